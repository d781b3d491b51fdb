package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/grocery_shop/internal/metrics"
	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/service"
	dbutil "github.com/Skotchmaster/grocery_shop/internal/testutil"
)

// orphanLine inserts a cart line whose product row has already been removed.
func orphanLine(t *testing.T, e *env, user *models.User) {
	t.Helper()
	p := dbutil.CreateProduct(t, e.DB, "Ghost", 1.00, 1)
	require.NoError(t, e.DB.Exec("PRAGMA foreign_keys = OFF").Error)
	require.NoError(t, e.DB.Create(&models.CartItem{UserID: user.ID, ProductID: p.ID, Quantity: 1}).Error)
	require.NoError(t, e.DB.Exec("DELETE FROM products WHERE id = ?", p.ID).Error)
	require.NoError(t, e.DB.Exec("PRAGMA foreign_keys = ON").Error)
}

func TestCartReconciler_RunOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := dbutil.CreateUser(t, e.DB, "u@example.com", "secret1", models.RoleUser)
	live := dbutil.CreateProduct(t, e.DB, "Apples", 1.50, 10)
	_, err := e.Cart.AddToCart(ctx, user.ID, live.ID, 1)
	require.NoError(t, err)
	orphanLine(t, e, user)

	before := testutil.ToFloat64(metrics.OrphanedCartLines)
	rec := &service.CartReconciler{Repo: e.Repo}
	n, err := rec.RunOnce(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.OrphanedCartLines))

	var left int64
	require.NoError(t, e.DB.Model(&models.CartItem{}).Count(&left).Error)
	assert.EqualValues(t, 1, left)

	n, err = rec.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCartReconciler_RunStopsOnCancel(t *testing.T) {
	e := newEnv(t)
	user := dbutil.CreateUser(t, e.DB, "u@example.com", "secret1", models.RoleUser)
	orphanLine(t, e, user)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	rec := &service.CartReconciler{Repo: e.Repo, Interval: 10 * time.Millisecond}
	go func() {
		rec.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		var n int64
		if err := e.DB.Model(&models.CartItem{}).Count(&n).Error; err != nil {
			return false
		}
		return n == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reconciler did not stop")
	}
}
