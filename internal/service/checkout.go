package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/events"
	"github.com/Skotchmaster/grocery_shop/internal/logging"
	"github.com/Skotchmaster/grocery_shop/internal/metrics"
	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/pricing"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
)

// Checkout stages, in order. Only the last one is ever persisted.
const (
	stageCartReview       = "cart-review"
	stageDiscountSelected = "discount-selected"
	stageSubmitted        = "submitted"
	stageConfirmed        = "confirmed"
)

type CheckoutService struct {
	Repo      *repo.GormRepo
	Discounts *DiscountService
	Events    events.Publisher
}

type PlaceOrderInput struct {
	// UserID, when the client sends one, must match the session user.
	UserID       *uuid.UUID
	UserName     string
	Address      string
	TotalAmount  float64
	DiscountCode string
}

// PlaceOrder turns the user's cart into a confirmed order. Prices, names and
// the total come from the server; the order row, the discount use and the
// cart clear commit together. Stock is lowered afterwards on a best-effort basis.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID uuid.UUID, in PlaceOrderInput) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.place_order", "user_id", userID)

	if in.UserID != nil && *in.UserID != uuid.Nil && *in.UserID != userID {
		return nil, fmt.Errorf("user id does not match session: %w", ErrValidation)
	}

	user, err := s.Repo.GetUserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	name := firstNonEmpty(in.UserName, user.Name)
	address := firstNonEmpty(in.Address, user.Address)
	if address == "" {
		return nil, fmt.Errorf("address required: %w", ErrValidation)
	}

	l.Debug("checkout_stage", "stage", stageCartReview)
	cart, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]models.OrderItem, 0, len(cart))
	lines := make([]pricing.Line, 0, len(cart))
	for _, it := range cart {
		if it.Product == nil {
			continue
		}
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Product.Name,
			Price:     it.Product.Price,
			Quantity:  it.Quantity,
		})
		lines = append(lines, pricing.Line{Price: it.Product.Price, Quantity: it.Quantity})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("cart is empty: %w", ErrValidation)
	}

	var discount *models.Discount
	if strings.TrimSpace(in.DiscountCode) != "" {
		l.Debug("checkout_stage", "stage", stageDiscountSelected)
		discount, err = s.Discounts.lookup(ctx, in.DiscountCode)
		if err != nil {
			return nil, err
		}
	}

	pct := 0
	if discount != nil {
		pct = discount.Percentage
	}
	quote := pricing.NewQuote(lines, pct)
	if in.TotalAmount > 0 && !pricing.Matches(in.TotalAmount, quote.Total) {
		l.Warn("checkout_total_mismatch", "client_total", in.TotalAmount, "server_total", quote.Total)
		return nil, fmt.Errorf("total mismatch: expected %.2f: %w", quote.Total, ErrValidation)
	}

	order := &models.Order{
		UserID:             userID,
		UserName:           name,
		Address:            address,
		Items:              items,
		Subtotal:           quote.Subtotal,
		DiscountPercentage: pct,
		TotalAmount:        quote.Total,
		Status:             models.OrderStatusConfirmed,
	}
	var discountID *uuid.UUID
	if discount != nil {
		order.DiscountCode = discount.Code
		discountID = &discount.ID
	}

	l.Debug("checkout_stage", "stage", stageSubmitted)
	if err := s.Repo.PlaceOrder(ctx, order, discountID); err != nil {
		if errors.Is(err, repo.ErrDiscountExhausted) {
			metrics.DiscountRejections.Inc()
			return nil, ErrInvalidDiscount
		}
		return nil, err
	}
	l.Info("checkout_stage", "stage", stageConfirmed, "order_id", order.ID, "total", order.TotalAmount)

	s.afterConfirm(ctx, order)
	return order, nil
}

func (s *CheckoutService) afterConfirm(ctx context.Context, order *models.Order) {
	dec := make([]repo.StockDecrement, 0, len(order.Items))
	for _, it := range order.Items {
		dec = append(dec, repo.StockDecrement{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	if err := s.Repo.DecrementStock(ctx, dec); err != nil {
		logging.FromContext(ctx).Warn("stock_decrement_failed", "order_id", order.ID, "error", err)
	}

	metrics.OrdersPlaced.Inc()
	metrics.OrderRevenue.Add(order.TotalAmount)
	if order.DiscountCode != "" {
		metrics.DiscountRedemptions.WithLabelValues(models.NormalizeCode(order.DiscountCode)).Inc()
	}

	events.Emit(ctx, s.Events, events.TopicOrder, order.UserID.String(), map[string]any{
		"type":         "order_created",
		"orderID":      order.ID,
		"userID":       order.UserID,
		"items":        len(order.Items),
		"subtotal":     order.Subtotal,
		"totalAmount":  order.TotalAmount,
		"discountCode": order.DiscountCode,
	})
}

func (s *CheckoutService) GetMyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.Repo.GetOrdersByUser(ctx, userID)
}

func (s *CheckoutService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetOrderForUser(ctx, userID, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order not found: %w", ErrNotFound)
	}
	return order, err
}

func (s *CheckoutService) GetAllOrders(ctx context.Context, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.GetOrders(ctx, offset, limit)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
