package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/events"
	"github.com/Skotchmaster/grocery_shop/internal/logging"
	"github.com/Skotchmaster/grocery_shop/internal/metrics"
	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/pricing"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
)

type DiscountService struct {
	Repo   *repo.GormRepo
	Cart   *CartService
	Events events.Publisher
}

type ApplyResult struct {
	Discount         models.Discount `json:"discount"`
	Subtotal         float64         `json:"subtotal"`
	DiscountedAmount float64         `json:"discountedAmount"`
}

func (s *DiscountService) GetDiscounts(ctx context.Context) ([]models.Discount, error) {
	return s.Repo.GetDiscounts(ctx)
}

// lookup returns the code only while it still has uses left.
func (s *DiscountService) lookup(ctx context.Context, code string) (*models.Discount, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrInvalidDiscount
	}
	d, err := s.Repo.GetDiscountByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.DiscountRejections.Inc()
		return nil, ErrInvalidDiscount
	}
	if err != nil {
		return nil, err
	}
	if !d.Redeemable() {
		metrics.DiscountRejections.Inc()
		return nil, ErrInvalidDiscount
	}
	return d, nil
}

// Apply previews a code against subtotal (or the user's cart subtotal when
// subtotal is nil). It never consumes a use; only placing an order does.
func (s *DiscountService) Apply(ctx context.Context, userID uuid.UUID, code string, subtotal *float64) (*ApplyResult, error) {
	l := logging.FromContext(ctx).With("svc", "discount.apply")

	d, err := s.lookup(ctx, code)
	if err != nil {
		l.Info("discount_rejected", "code", models.NormalizeCode(code), "error", err)
		return nil, err
	}

	var base decimal.Decimal
	switch {
	case subtotal != nil:
		if *subtotal < 0 {
			return nil, fmt.Errorf("subtotal must not be negative: %w", ErrValidation)
		}
		base = decimal.NewFromFloat(*subtotal)
	case s.Cart != nil:
		view, err := s.Cart.GetCart(ctx, userID)
		if err != nil {
			return nil, err
		}
		base = decimal.NewFromFloat(view.Subtotal)
	}

	q := pricing.QuoteSubtotal(base, d.Percentage)
	return &ApplyResult{
		Discount:         *d,
		Subtotal:         q.Subtotal,
		DiscountedAmount: q.Total,
	}, nil
}

type CreateDiscountInput struct {
	Code       string
	Percentage int
	UsageLimit int
}

func (s *DiscountService) CreateDiscount(ctx context.Context, in CreateDiscountInput) (*models.Discount, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, fmt.Errorf("code required: %w", ErrValidation)
	}
	if in.Percentage < 1 || in.Percentage > 100 {
		return nil, fmt.Errorf("percentage must be between 1 and 100: %w", ErrValidation)
	}
	if in.UsageLimit < 1 {
		return nil, fmt.Errorf("usage limit must be positive: %w", ErrValidation)
	}

	d := &models.Discount{Code: code, Percentage: in.Percentage, UsageLimit: in.UsageLimit}
	if err := s.Repo.CreateDiscount(ctx, d); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("discount code %q already exists: %w", code, ErrConflict)
		}
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicDiscount, d.ID.String(), map[string]any{
		"type":       "discount_created",
		"discountID": d.ID,
		"code":       d.Code,
		"percentage": d.Percentage,
		"usageLimit": d.UsageLimit,
	})
	return d, nil
}

func (s *DiscountService) DeleteDiscount(ctx context.Context, id uuid.UUID) error {
	err := s.Repo.DeleteDiscount(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("discount not found: %w", ErrNotFound)
	}
	if err != nil {
		return err
	}

	events.Emit(ctx, s.Events, events.TopicDiscount, id.String(), map[string]any{
		"type":       "discount_deleted",
		"discountID": id,
	})
	return nil
}
