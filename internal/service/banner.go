package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
	"github.com/Skotchmaster/grocery_shop/internal/storage"
	"github.com/Skotchmaster/grocery_shop/internal/transport"
)

const (
	defaultBannerTitle       = "New Offer"
	defaultBannerDescription = "Check out this deal!"
	defaultBannerDiscount    = 10
)

type BannerService struct {
	Repo *repo.GormRepo
	Disk storage.Disk
}

func (s *BannerService) GetBanners(ctx context.Context) ([]models.Banner, error) {
	return s.Repo.GetBanners(ctx)
}

func validBannerDiscount(d int) error {
	if d < 0 || d > 100 {
		return fmt.Errorf("discount must be between 0 and 100: %w", ErrValidation)
	}
	return nil
}

// CreateBanner needs an image URL; the other fields fall back to the
// storefront's default promotion copy.
func (s *BannerService) CreateBanner(ctx context.Context, req transport.BannerRequest) (*models.Banner, error) {
	if req.ImageURL == nil || *req.ImageURL == "" {
		return nil, fmt.Errorf("image required: %w", ErrValidation)
	}
	b := &models.Banner{
		ImageURL:    *req.ImageURL,
		Title:       defaultBannerTitle,
		Description: defaultBannerDescription,
		Discount:    defaultBannerDiscount,
	}
	if req.Title != nil && *req.Title != "" {
		b.Title = *req.Title
	}
	if req.Description != nil && *req.Description != "" {
		b.Description = *req.Description
	}
	if req.Discount != nil {
		b.Discount = *req.Discount
	}
	if err := validBannerDiscount(b.Discount); err != nil {
		return nil, err
	}

	if err := s.Repo.CreateBanner(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BannerService) UpdateBanner(ctx context.Context, id uuid.UUID, req transport.BannerRequest) (*models.Banner, error) {
	b, err := s.Repo.GetBanner(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("banner not found: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	oldImage := b.ImageURL

	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	if req.Discount != nil {
		if err := validBannerDiscount(*req.Discount); err != nil {
			return nil, err
		}
		b.Discount = *req.Discount
	}
	if req.ImageURL != nil && *req.ImageURL != "" {
		b.ImageURL = *req.ImageURL
	}

	if err := s.Repo.SaveBanner(ctx, b); err != nil {
		return nil, err
	}
	if oldImage != b.ImageURL {
		removeImage(ctx, s.Disk, oldImage)
	}
	return b, nil
}

func (s *BannerService) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	b, err := s.Repo.GetBanner(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("banner not found: %w", ErrNotFound)
	}
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteBanner(ctx, id); err != nil {
		return err
	}
	removeImage(ctx, s.Disk, b.ImageURL)
	return nil
}
