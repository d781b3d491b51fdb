package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestApplyPercent(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		pct      int
		want     string
	}{
		{"twenty off ten", "10.00", 20, "8"},
		{"ten off four fifty", "4.50", 10, "4.05"},
		{"rounds half away from zero", "0.05", 50, "0.03"},
		{"thirds", "1.00", 33, "0.67"},
		{"full discount", "12.34", 100, "0"},
		{"zero pct", "12.34", 0, "12.34"},
		{"clamped above", "5.00", 150, "0"},
		{"clamped below", "5.00", -5, "5"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ApplyPercent(decimal.RequireFromString(tt.subtotal), tt.pct)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestNewQuote(t *testing.T) {
	lines := []Line{{Price: 1.50, Quantity: 2}, {Price: 0.50, Quantity: 3}}

	q := NewQuote(lines, 0)
	assert.Equal(t, 4.50, q.Subtotal)
	assert.Equal(t, 4.50, q.Total)
	assert.Equal(t, 0.0, q.Discount)

	q = NewQuote(lines, 10)
	assert.Equal(t, 4.50, q.Subtotal)
	assert.Equal(t, 4.05, q.Total)
	assert.Equal(t, 0.45, q.Discount)
	assert.Equal(t, 10, q.Percentage)
}

func TestSubtotalAvoidsFloatDrift(t *testing.T) {
	lines := []Line{{Price: 0.1, Quantity: 3}, {Price: 0.2, Quantity: 1}}
	assert.True(t, Subtotal(lines).Equal(decimal.RequireFromString("0.5")))
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches(8.00, 8.00))
	assert.True(t, Matches(8.01, 8.00))
	assert.False(t, Matches(8.02, 8.00))
	assert.False(t, Matches(7.00, 8.00))
}
