package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/events"
	"github.com/Skotchmaster/grocery_shop/internal/logging"
	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
	"github.com/Skotchmaster/grocery_shop/internal/search"
	"github.com/Skotchmaster/grocery_shop/internal/storage"
	"github.com/Skotchmaster/grocery_shop/internal/transport"
)

const reindexBatch = 200

// CatalogService owns groceries. Index and Disk are optional: without an
// index search falls back to SQL, without a disk old images are kept.
type CatalogService struct {
	Repo   *repo.GormRepo
	Index  search.Index
	Disk   storage.Disk
	Events events.Publisher
}

func (s *CatalogService) GetProducts(ctx context.Context, category string, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.GetProducts(ctx, strings.TrimSpace(category), offset, limit)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product not found: %w", ErrNotFound)
	}
	return p, err
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name required: %w", ErrValidation)
	}
	if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return fmt.Errorf("price must be a finite number: %w", ErrValidation)
	}
	if p.Price < 0 {
		return fmt.Errorf("price must not be negative: %w", ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("stock must not be negative: %w", ErrValidation)
	}
	return nil
}

func applyProduct(p *models.Product, req transport.ProductRequest) {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.ProductRequest) (*models.Product, error) {
	if req.Price == nil {
		return nil, fmt.Errorf("price required: %w", ErrValidation)
	}
	prod := &models.Product{}
	applyProduct(prod, req)
	if err := validateProduct(prod); err != nil {
		return nil, err
	}

	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.index(ctx, *prod)
	events.Emit(ctx, s.Events, events.TopicProduct, prod.ID.String(), map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	return prod, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req transport.ProductRequest) (*models.Product, error) {
	prod, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	oldImage := prod.Image

	applyProduct(prod, req)
	if err := validateProduct(prod); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveProduct(ctx, prod); err != nil {
		return nil, err
	}

	if oldImage != "" && oldImage != prod.Image {
		s.removeImage(ctx, oldImage)
	}
	s.index(ctx, *prod)
	events.Emit(ctx, s.Events, events.TopicProduct, prod.ID.String(), map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	return prod, nil
}

// DeleteProduct removes the product together with the cart lines holding it.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	prod, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product not found: %w", ErrNotFound)
		}
		return err
	}

	s.removeImage(ctx, prod.Image)
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_delete_error", "product_id", id, "error", err)
		}
	}
	events.Emit(ctx, s.Events, events.TopicProduct, id.String(), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

// Search queries the index and falls back to SQL when the index is absent
// or failing.
func (s *CatalogService) Search(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	q, err := search.Normalize(query)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", err.Error(), ErrValidation)
	}

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "query", q, "error", err)
	}
	return s.Repo.SearchProducts(ctx, q, offset, limit)
}

// Reindex pushes every product to the search index and returns how many were sent.
func (s *CatalogService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	n := 0
	err := s.Repo.AllProducts(ctx, reindexBatch, func(batch []models.Product) error {
		for _, p := range batch {
			if err := s.Index.IndexProduct(ctx, p); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

func (s *CatalogService) index(ctx context.Context, p models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) removeImage(ctx context.Context, url string) {
	removeImage(ctx, s.Disk, url)
}

func removeImage(ctx context.Context, d storage.Disk, url string) {
	if d == nil || url == "" {
		return
	}
	if err := storage.Remove(ctx, d, url); err != nil {
		logging.FromContext(ctx).Warn("image_remove_error", "url", url, "error", err)
	}
}
