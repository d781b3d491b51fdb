package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/grocery_shop/internal/events"
	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/service"
	"github.com/Skotchmaster/grocery_shop/internal/testutil"
)

func fillCart(t *testing.T, env *testEnv, ck []*http.Cookie) {
	t.Helper()
	a := testutil.CreateProduct(t, env.DB, "Apples", 1.50, 10)
	b := testutil.CreateProduct(t, env.DB, "Bananas", 0.50, 10)
	for _, line := range []struct {
		id  string
		qty int
	}{{a.ID.String(), 2}, {b.ID.String(), 3}} {
		rec := env.do(t, http.MethodPost, "/api/cart", map[string]any{"productId": line.id, "quantity": line.qty}, ck)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestDiscount_ApplyThenOrder(t *testing.T) {
	env := newTestEnv(t)
	user, ck := env.login(t, "u@example.com", models.RoleUser)
	fillCart(t, env, ck)
	testutil.CreateDiscount(t, env.DB, "SAVE10", 10, 5, 0)

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodPost, "/api/discounts/apply", map[string]any{"code": "save10"}, ck)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := decode[service.ApplyResult](t, rec)
		assert.Equal(t, 4.05, res.DiscountedAmount)
		assert.Equal(t, 0, res.Discount.UsedCount)
	}

	rec := env.do(t, http.MethodPost, "/api/orders", map[string]any{
		"userId":       user.ID.String(),
		"userName":     "Jane",
		"address":      "1 Elm St",
		"items":        []map[string]any{{"id": "ignored", "name": "x", "price": 0.01, "quantity": 1}},
		"totalAmount":  4.05,
		"discountCode": "SAVE10",
	}, ck)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[models.Order](t, rec)
	assert.Equal(t, 4.05, order.TotalAmount)
	assert.Len(t, order.Items, 2)

	rec = env.do(t, http.MethodGet, "/api/discounts", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	discounts := decode[[]models.Discount](t, rec)
	require.Len(t, discounts, 1)
	assert.Equal(t, 1, discounts[0].UsedCount)

	rec = env.do(t, http.MethodGet, "/api/orders", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Order](t, rec), 1)

	rec = env.do(t, http.MethodGet, "/api/orders/"+order.ID.String(), nil, ck)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"order_created"}, env.Events.Types(events.TopicOrder))
}

func TestDiscount_ApplyRejected(t *testing.T) {
	env := newTestEnv(t)
	_, ck := env.login(t, "u@example.com", models.RoleUser)
	testutil.CreateDiscount(t, env.DB, "USEDUP", 10, 1, 1)

	rec := env.do(t, http.MethodPost, "/api/discounts/apply", map[string]any{"code": "USEDUP", "subtotal": 10}, ck)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "invalid or expired discount code", body["message"])

	rec = env.do(t, http.MethodPost, "/api/discounts/apply", map[string]any{"code": "USEDUP"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrder_Rejections(t *testing.T) {
	env := newTestEnv(t)
	_, ck := env.login(t, "u@example.com", models.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/orders", map[string]any{"address": "1 Elm St"}, ck)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "cart is empty", decode[map[string]any](t, rec)["message"])

	fillCart(t, env, ck)
	rec = env.do(t, http.MethodPost, "/api/orders", map[string]any{"totalAmount": 1.00}, ck)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/orders", map[string]any{"userId": "not-a-uuid"}, ck)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/orders/7b0c6a0e-0000-4000-8000-000000000000", nil, ck)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmin_Routes(t *testing.T) {
	env := newTestEnv(t)
	_, userCk := env.login(t, "u@example.com", models.RoleUser)
	_, adminCk := env.login(t, "admin@example.com", models.RoleAdmin)
	fillCart(t, env, userCk)

	rec := env.do(t, http.MethodPost, "/api/orders", map[string]any{}, userCk)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/admin/overview", nil, userCk)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/overview", nil, adminCk)
	require.Equal(t, http.StatusOK, rec.Code)
	ov := decode[service.Overview](t, rec)
	assert.EqualValues(t, 1, ov.Orders)
	assert.Equal(t, 4.50, ov.Revenue)

	rec = env.do(t, http.MethodGet, "/api/admin/orders?page=1&size=10", nil, adminCk)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Len(t, body["data"], 1)

	rec = env.do(t, http.MethodPost, "/api/discounts", map[string]any{"code": "NEW5", "percentage": 5, "usageLimit": 3}, adminCk)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	d := decode[models.Discount](t, rec)

	rec = env.do(t, http.MethodPost, "/api/discounts", map[string]any{"code": "new5", "percentage": 5, "usageLimit": 3}, adminCk)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/discounts/"+d.ID.String(), nil, userCk)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/discounts/"+d.ID.String(), nil, adminCk)
	assert.Equal(t, http.StatusOK, rec.Code)
}
