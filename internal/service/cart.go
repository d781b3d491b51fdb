package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/events"
	"github.com/Skotchmaster/grocery_shop/internal/logging"
	"github.com/Skotchmaster/grocery_shop/internal/metrics"
	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/pricing"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// CartLine is a stored line joined with its live product row.
type CartLine struct {
	ProductID uuid.UUID      `json:"productId"`
	Quantity  int            `json:"quantity"`
	Product   models.Product `json:"product"`
}

type CartView struct {
	Items    []CartLine `json:"items"`
	Subtotal float64    `json:"subtotal"`
}

// GetCart returns lines whose product still exists. Orphaned lines are
// skipped here and left for the reconciler.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{Items: make([]CartLine, 0, len(items))}
	lines := make([]pricing.Line, 0, len(items))
	orphans := 0
	for _, it := range items {
		if it.Product == nil {
			orphans++
			continue
		}
		view.Items = append(view.Items, CartLine{ProductID: it.ProductID, Quantity: it.Quantity, Product: *it.Product})
		lines = append(lines, pricing.Line{Price: it.Product.Price, Quantity: it.Quantity})
	}
	if orphans > 0 {
		logging.FromContext(ctx).Debug("cart_orphans_skipped", "user_id", userID, "count", orphans)
	}
	view.Subtotal = pricing.Round2(pricing.Subtotal(lines))
	return view, nil
}

func (s *CartService) AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("product id required: %w", ErrValidation)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}

	ok, err := s.Repo.ProductExists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("product not found: %w", ErrNotFound)
	}

	item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := s.Repo.AddToCart(ctx, item); err != nil {
		return nil, err
	}

	metrics.CartMutations.WithLabelValues("add").Inc()
	events.Emit(ctx, s.Events, events.TopicCart, userID.String(), map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": productID,
		"added":     quantity,
		"quantity":  item.Quantity,
	})
	return item, nil
}

// SetQuantity replaces the line's quantity. A quantity of zero or less
// removes the line, so a stored line never holds less than one.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("product id required: %w", ErrValidation)
	}

	if quantity <= 0 {
		if err := s.RemoveFromCart(ctx, userID, productID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	item, err := s.Repo.SetCartQuantity(ctx, userID, productID, quantity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("item not in cart: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	metrics.CartMutations.WithLabelValues("set").Inc()
	events.Emit(ctx, s.Events, events.TopicCart, userID.String(), map[string]any{
		"type":      "cart_item_updated",
		"userID":    userID,
		"productID": productID,
		"quantity":  item.Quantity,
	})
	return item, nil
}

func (s *CartService) DeleteOneFromCart(ctx context.Context, userID, productID uuid.UUID) (bool, *models.CartItem, error) {
	if productID == uuid.Nil {
		return false, nil, fmt.Errorf("product id required: %w", ErrValidation)
	}

	deleted, item, err := s.Repo.DeleteOneFromCart(ctx, userID, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil, fmt.Errorf("item not in cart: %w", ErrNotFound)
	}
	if err != nil {
		return false, nil, err
	}

	metrics.CartMutations.WithLabelValues("decrement").Inc()
	ev := map[string]any{
		"type":      "cart_item_decremented",
		"userID":    userID,
		"productID": productID,
		"quantity":  0,
	}
	if !deleted {
		ev["quantity"] = item.Quantity
	}
	events.Emit(ctx, s.Events, events.TopicCart, userID.String(), ev)
	return deleted, item, nil
}

// RemoveFromCart deletes the line; removing an absent line is not an error.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return fmt.Errorf("product id required: %w", ErrValidation)
	}
	if err := s.Repo.DeleteFromCart(ctx, userID, productID); err != nil {
		return err
	}

	metrics.CartMutations.WithLabelValues("remove").Inc()
	events.Emit(ctx, s.Events, events.TopicCart, userID.String(), map[string]any{
		"type":      "cart_item_removed",
		"userID":    userID,
		"productID": productID,
	})
	return nil
}

func (s *CartService) DeleteAllFromCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.Repo.DeleteAllFromCart(ctx, userID); err != nil {
		return err
	}

	metrics.CartMutations.WithLabelValues("clear").Inc()
	events.Emit(ctx, s.Events, events.TopicCart, userID.String(), map[string]any{
		"type":   "cart_cleared",
		"userID": userID,
	})
	return nil
}
