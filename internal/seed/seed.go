// Package seed loads the demo catalog and accounts into an empty database.
package seed

import (
	"context"
	"errors"

	"github.com/Skotchmaster/grocery_shop/internal/hash"
	"github.com/Skotchmaster/grocery_shop/internal/logging"
	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
)

type account struct {
	name, email, password, role string
}

var accounts = []account{
	{"Admin User", "admin@example.com", "admin123", models.RoleAdmin},
	{"Default User", "user@example.com", "password123", models.RoleUser},
}

var categories = []models.Category{
	{Name: "Fruits", Description: "Fresh seasonal fruit", Image: "/images/Fruits.png"},
	{Name: "Bakery", Description: "Bread and pastries baked daily", Image: "/images/Bakery.png"},
	{Name: "Dairy", Description: "Milk, cheese and eggs", Image: "/images/Dairy.png"},
	{Name: "Vegetables", Description: "Farm vegetables and greens", Image: "/images/Vegetables.png"},
}

var products = []models.Product{
	{Name: "Organic Apples", Description: "Crisp organic apples", Price: 2.99, Category: "Fruits", Stock: 100},
	{Name: "Whole Wheat Bread", Description: "Freshly baked whole wheat loaf", Price: 3.49, Category: "Bakery", Stock: 50},
	{Name: "Free-Range Eggs", Description: "A dozen free-range eggs", Price: 4.99, Category: "Dairy", Stock: 75},
	{Name: "Organic Spinach", Description: "Baby spinach leaves", Price: 2.50, Category: "Vegetables", Stock: 60},
	{Name: "Almond Milk", Description: "Unsweetened almond milk", Price: 3.29, Category: "Dairy", Stock: 40},
	{Name: "Chicken Breast", Description: "Boneless chicken breast", Price: 8.99, Category: "Meat", Stock: 30},
	{Name: "Bananas", Description: "Ripe yellow bananas", Price: 1.50, Category: "Fruits", Stock: 120},
	{Name: "Sourdough Loaf", Description: "Slow-fermented sourdough", Price: 4.50, Category: "Bakery", Stock: 0},
}

type Result struct {
	Users      int
	Categories int
	Products   int
}

// Run inserts what is missing. Accounts and categories are matched by their
// unique keys; products are only inserted into an empty catalog.
func Run(ctx context.Context, r *repo.GormRepo) (Result, error) {
	l := logging.FromContext(ctx).With("op", "seed")
	var res Result

	for _, a := range accounts {
		pw, err := hash.HashPassword(a.password)
		if err != nil {
			return res, err
		}
		u := &models.User{Name: a.name, Email: a.email, PasswordHash: pw, Role: a.role}
		err = r.CreateUserIfNotExists(ctx, u)
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			continue
		}
		if err != nil {
			return res, err
		}
		res.Users++
	}

	for _, c := range categories {
		c := c
		err := r.CreateCategory(ctx, &c)
		if errors.Is(err, repo.ErrDuplicate) {
			continue
		}
		if err != nil {
			return res, err
		}
		res.Categories++
	}

	n, err := r.CountProducts(ctx)
	if err != nil {
		return res, err
	}
	if n == 0 {
		for _, p := range products {
			p := p
			if err := r.CreateProduct(ctx, &p); err != nil {
				return res, err
			}
			res.Products++
		}
	}

	l.Info("seed_done", "users", res.Users, "categories", res.Categories, "products", res.Products)
	return res, nil
}
