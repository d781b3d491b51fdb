package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/grocery_shop/internal/logging"
	"github.com/Skotchmaster/grocery_shop/internal/service"
	"github.com/Skotchmaster/grocery_shop/internal/transport"
)

type DiscountHTTP struct {
	Svc *service.DiscountService
}

func (h *DiscountHTTP) GetDiscounts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "discount.list")

	items, err := h.Svc.GetDiscounts(ctx)
	if err != nil {
		return fail(l, "get_discounts_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

// Apply previews a code; it does not consume a use.
func (h *DiscountHTTP) Apply(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "discount.apply")

	userID, err := GetID(c)
	if err != nil {
		return err
	}
	var req transport.ApplyDiscountRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("apply_discount_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Apply(ctx, userID, req.Code, req.Subtotal)
	if err != nil {
		return fail(l, "apply_discount_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *DiscountHTTP) CreateDiscount(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "discount.create")

	var req transport.CreateDiscountRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_discount_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	d, err := h.Svc.CreateDiscount(ctx, service.CreateDiscountInput{
		Code:       req.Code,
		Percentage: req.Percentage,
		UsageLimit: req.UsageLimit,
	})
	if err != nil {
		return fail(l, "create_discount_error", err)
	}
	l.Info("create_discount_success", "discount_id", d.ID)
	return c.JSON(http.StatusCreated, d)
}

func (h *DiscountHTTP) DeleteDiscount(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "discount.delete")

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteDiscount(ctx, id); err != nil {
		return fail(l, "delete_discount_error", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "discount deleted"})
}
