// Package pricing computes cart subtotals and percentage discounts in decimal
// arithmetic. Every amount leaving the package is rounded half away from zero
// to two places.
package pricing

import "github.com/shopspring/decimal"

type Line struct {
	Price    float64
	Quantity int
}

type Quote struct {
	Subtotal   float64 `json:"subtotal"`
	Percentage int     `json:"percentage"`
	Discount   float64 `json:"discount"`
	Total      float64 `json:"total"`
}

var hundred = decimal.NewFromInt(100)

func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// ApplyPercent returns subtotal × (1 − pct/100), rounded to cents.
// pct is clamped to [0, 100].
func ApplyPercent(subtotal decimal.Decimal, pct int) decimal.Decimal {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	keep := hundred.Sub(decimal.NewFromInt(int64(pct)))
	return subtotal.Mul(keep).Div(hundred).Round(2)
}

func Round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func NewQuote(lines []Line, pct int) Quote {
	return QuoteSubtotal(Subtotal(lines), pct)
}

func QuoteSubtotal(subtotal decimal.Decimal, pct int) Quote {
	sub := subtotal.Round(2)
	total := ApplyPercent(sub, pct)
	return Quote{
		Subtotal:   Round2(sub),
		Percentage: pct,
		Discount:   Round2(sub.Sub(total)),
		Total:      Round2(total),
	}
}

// Matches reports whether a client-side amount agrees with the server total to within a cent.
func Matches(client, server float64) bool {
	diff := decimal.NewFromFloat(client).Sub(decimal.NewFromFloat(server)).Abs()
	return diff.LessThanOrEqual(decimal.NewFromFloat(0.01))
}
