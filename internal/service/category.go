package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/events"
	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
	"github.com/Skotchmaster/grocery_shop/internal/storage"
	"github.com/Skotchmaster/grocery_shop/internal/transport"
)

const DefaultCategoryImage = "/images/Bakery.png"

type CategoryService struct {
	Repo   *repo.GormRepo
	Disk   storage.Disk
	Events events.Publisher
}

func (s *CategoryService) GetCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.GetCategories(ctx)
}

func (s *CategoryService) CreateCategory(ctx context.Context, req transport.CategoryRequest) (*models.Category, error) {
	c := &models.Category{Image: DefaultCategoryImage}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if c.Name == "" {
		return nil, fmt.Errorf("name required: %w", ErrValidation)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Image != nil && *req.Image != "" {
		c.Image = *req.Image
	}

	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("category %q already exists: %w", c.Name, ErrConflict)
		}
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicProduct, c.ID.String(), map[string]any{
		"type":       "category_created",
		"categoryID": c.ID,
		"name":       c.Name,
	})
	return c, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req transport.CategoryRequest) (*models.Category, error) {
	c, err := s.Repo.GetCategory(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("category not found: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	oldImage := c.Image

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("name must not be empty: %w", ErrValidation)
		}
		c.Name = name
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Image != nil && *req.Image != "" {
		c.Image = *req.Image
	}

	if err := s.Repo.SaveCategory(ctx, c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("category %q already exists: %w", c.Name, ErrConflict)
		}
		return nil, err
	}
	if oldImage != c.Image {
		removeImage(ctx, s.Disk, oldImage)
	}

	events.Emit(ctx, s.Events, events.TopicProduct, c.ID.String(), map[string]any{
		"type":       "category_updated",
		"categoryID": c.ID,
		"name":       c.Name,
	})
	return c, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	c, err := s.Repo.GetCategory(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("category not found: %w", ErrNotFound)
	}
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("category not found: %w", ErrNotFound)
		}
		return err
	}
	removeImage(ctx, s.Disk, c.Image)

	events.Emit(ctx, s.Events, events.TopicProduct, id.String(), map[string]any{
		"type":       "category_deleted",
		"categoryID": id,
	})
	return nil
}
