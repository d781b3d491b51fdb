package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/grocery_shop/internal/logging"
	"github.com/Skotchmaster/grocery_shop/internal/service"
	"github.com/Skotchmaster/grocery_shop/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

// GetCart returns the lines of the caller's cart joined with their products.
func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := GetID(c)
	if err != nil {
		return err
	}

	view, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, view.Items)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		l.Warn("add_cart_error", "status", 400, "reason", "invalid product id")
		return echo.NewHTTPError(http.StatusBadRequest, "productId is not a valid id")
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	item, err := h.Svc.AddToCart(ctx, userID, productID, qty)
	if err != nil {
		return fail(l, "add_cart_error", err)
	}

	l.Info("add_cart_success", "product_id", productID, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, map[string]any{
		"message": "item added to cart",
		"item":    item,
	})
}

func (h *CartHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	userID, err := GetID(c)
	if err != nil {
		return err
	}
	productID, err := paramID(c, "productId")
	if err != nil {
		return err
	}

	var req transport.UpdateCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity == nil || *req.Quantity < 1 {
		l.Warn("update_cart_error", "status", 400, "reason", "quantity must be at least 1")
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be at least 1")
	}

	item, err := h.Svc.SetQuantity(ctx, userID, productID, *req.Quantity)
	if err != nil {
		return fail(l, "update_cart_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "cart updated",
		"item":    item,
	})
}

func (h *CartHTTP) DecrementItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.decrement")

	userID, err := GetID(c)
	if err != nil {
		return err
	}
	productID, err := paramID(c, "productId")
	if err != nil {
		return err
	}

	deleted, item, err := h.Svc.DeleteOneFromCart(ctx, userID, productID)
	if err != nil {
		return fail(l, "decrement_cart_error", err)
	}
	if deleted {
		return c.JSON(http.StatusOK, map[string]any{"message": "item removed from cart", "deleted": true})
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "cart updated", "deleted": false, "item": item})
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, err := GetID(c)
	if err != nil {
		return err
	}
	productID, err := paramID(c, "productId")
	if err != nil {
		return err
	}

	if err := h.Svc.RemoveFromCart(ctx, userID, productID); err != nil {
		return fail(l, "remove_cart_error", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "item removed from cart"})
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := GetID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteAllFromCart(ctx, userID); err != nil {
		return fail(l, "clear_cart_error", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "cart cleared"})
}
