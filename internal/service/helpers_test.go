package service_test

import (
	"testing"

	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/events"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
	"github.com/Skotchmaster/grocery_shop/internal/service"
	"github.com/Skotchmaster/grocery_shop/internal/testutil"
)

type env struct {
	DB       *gorm.DB
	Repo     *repo.GormRepo
	Events   *events.Memory
	Cart     *service.CartService
	Discount *service.DiscountService
	Checkout *service.CheckoutService
	Catalog  *service.CatalogService
	Auth     *service.AuthService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	gdb := testutil.NewDB(t)
	r := repo.New(gdb)
	ev := &events.Memory{}

	cart := &service.CartService{Repo: r, Events: ev}
	disc := &service.DiscountService{Repo: r, Cart: cart, Events: ev}
	return &env{
		DB:       gdb,
		Repo:     r,
		Events:   ev,
		Cart:     cart,
		Discount: disc,
		Checkout: &service.CheckoutService{Repo: r, Discounts: disc, Events: ev},
		Catalog:  &service.CatalogService{Repo: r, Events: ev},
		Auth: &service.AuthService{
			Repo:          r,
			JWTSecret:     []byte("test-jwt-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
			Events:        ev,
		},
	}
}
