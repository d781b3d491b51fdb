package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/grocery_shop/internal/hash"
	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
	"github.com/Skotchmaster/grocery_shop/internal/testutil"
)

func newOrder(user *models.User, p *models.Product, qty int) *models.Order {
	return &models.Order{
		UserID:      user.ID,
		UserName:    user.Name,
		Address:     user.Address,
		Items:       []models.OrderItem{{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: qty}},
		Subtotal:    p.Price * float64(qty),
		TotalAmount: p.Price * float64(qty),
		Status:      models.OrderStatusConfirmed,
	}
}

func TestPlaceOrderRedeemsAndClears(t *testing.T) {
	gdb := testutil.NewDB(t)
	r := repo.New(gdb)
	ctx := context.Background()

	user := testutil.CreateUser(t, gdb, "u@example.com", "pw", models.RoleUser)
	p := testutil.CreateProduct(t, gdb, "Apples", 2.00, 10)
	d := testutil.CreateDiscount(t, gdb, "SAVE10", 10, 2, 0)
	require.NoError(t, r.AddToCart(ctx, &models.CartItem{UserID: user.ID, ProductID: p.ID, Quantity: 2}))

	order := newOrder(user, p, 2)
	require.NoError(t, r.PlaceOrder(ctx, order, &d.ID))

	got, err := r.GetDiscountByCode(ctx, "save10")
	require.NoError(t, err)
	assert.Equal(t, 1, got.UsedCount)

	cart, err := r.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	stored, err := r.GetOrderForUser(ctx, user.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Apples", stored.Items[0].Name)
}

func TestPlaceOrderRollsBackWhenDiscountExhausted(t *testing.T) {
	gdb := testutil.NewDB(t)
	r := repo.New(gdb)
	ctx := context.Background()

	user := testutil.CreateUser(t, gdb, "u@example.com", "pw", models.RoleUser)
	p := testutil.CreateProduct(t, gdb, "Apples", 2.00, 10)
	d := testutil.CreateDiscount(t, gdb, "ONCE", 50, 1, 1)
	require.NoError(t, r.AddToCart(ctx, &models.CartItem{UserID: user.ID, ProductID: p.ID, Quantity: 1}))

	err := r.PlaceOrder(ctx, newOrder(user, p, 1), &d.ID)
	require.ErrorIs(t, err, repo.ErrDiscountExhausted)

	orders, err := r.GetOrdersByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)

	cart, err := r.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, cart, 1)
}

func TestDecrementStockFloorsAtZero(t *testing.T) {
	gdb := testutil.NewDB(t)
	r := repo.New(gdb)
	ctx := context.Background()

	a := testutil.CreateProduct(t, gdb, "A", 1, 5)
	b := testutil.CreateProduct(t, gdb, "B", 1, 2)

	require.NoError(t, r.DecrementStock(ctx, []repo.StockDecrement{
		{ProductID: a.ID, Quantity: 3},
		{ProductID: b.ID, Quantity: 9},
	}))

	got, err := r.GetProduct(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
	got, err = r.GetProduct(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}

func TestCreateDiscountRejectsCaseInsensitiveDuplicate(t *testing.T) {
	gdb := testutil.NewDB(t)
	r := repo.New(gdb)
	ctx := context.Background()

	require.NoError(t, r.CreateDiscount(ctx, &models.Discount{Code: "Fresh20", Percentage: 20, UsageLimit: 5}))
	err := r.CreateDiscount(ctx, &models.Discount{Code: "FRESH20", Percentage: 10, UsageLimit: 1})
	require.ErrorIs(t, err, repo.ErrDuplicate)
}

func TestRotateRefreshToken(t *testing.T) {
	gdb := testutil.NewDB(t)
	r := repo.New(gdb)
	ctx := context.Background()

	user := testutil.CreateUser(t, gdb, "u@example.com", "pw", models.RoleUser)
	exp := time.Now().Add(time.Hour).Unix()
	old := &models.RefreshToken{Token: hash.Sha256Hex("old"), UserID: user.ID, JTI: "jti-old", ExpiresAt: exp}
	require.NoError(t, r.AddRefreshToken(ctx, old))

	next := &models.RefreshToken{Token: hash.Sha256Hex("new"), UserID: user.ID, JTI: "jti-new", ExpiresAt: exp}
	require.NoError(t, r.RotateRefreshToken(ctx, "jti-old", next))

	again := &models.RefreshToken{Token: hash.Sha256Hex("again"), UserID: user.ID, JTI: "jti-again", ExpiresAt: exp}
	require.ErrorIs(t, r.RotateRefreshToken(ctx, "jti-old", again), repo.ErrTokenRevoked)

	require.NoError(t, r.RevokeRefreshToken(ctx, "new"))
	stored, err := r.FindRefreshByJTI(ctx, "jti-new")
	require.NoError(t, err)
	assert.True(t, stored.Revoked)
}
