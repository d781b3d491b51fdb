package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/grocery_shop/internal/pricing"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
)

type Overview struct {
	Users     int64   `json:"users"`
	Products  int64   `json:"products"`
	Discounts int64   `json:"discounts"`
	Orders    int64   `json:"orders"`
	Revenue   float64 `json:"revenue"`
}

type AdminService struct {
	Repo *repo.GormRepo
}

func (s *AdminService) Overview(ctx context.Context) (*Overview, error) {
	var (
		out Overview
		err error
	)
	if out.Users, err = s.Repo.CountUsers(ctx); err != nil {
		return nil, err
	}
	if out.Products, err = s.Repo.CountProducts(ctx); err != nil {
		return nil, err
	}
	if out.Discounts, err = s.Repo.CountDiscounts(ctx); err != nil {
		return nil, err
	}
	stats, err := s.Repo.GetOrderStats(ctx)
	if err != nil {
		return nil, err
	}
	out.Orders = stats.Count
	out.Revenue = pricing.Round2(decimal.NewFromFloat(stats.Revenue))
	return &out, nil
}
