package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/db"
	"github.com/Skotchmaster/grocery_shop/internal/hash"
	"github.com/Skotchmaster/grocery_shop/internal/models"
)

// NewDB returns a migrated in-memory SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background(), gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func CreateUser(t *testing.T, gdb *gorm.DB, email, password, role string) *models.User {
	t.Helper()

	pw, err := hash.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{
		Name:         "Test " + role,
		Email:        email,
		PasswordHash: pw,
		Role:         role,
		Address:      "123 Main St",
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func CreateProduct(t *testing.T, gdb *gorm.DB, name string, price float64, stock int) *models.Product {
	t.Helper()

	p := &models.Product{
		Name:        name,
		Description: name + " description",
		Price:       price,
		Category:    "Fruits",
		Stock:       stock,
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func CreateDiscount(t *testing.T, gdb *gorm.DB, code string, pct, limit, used int) *models.Discount {
	t.Helper()

	d := &models.Discount{
		Code:       code,
		Percentage: pct,
		UsageLimit: limit,
		UsedCount:  used,
	}
	require.NoError(t, gdb.Create(d).Error)
	return d
}
