package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/models"
)

func (r *GormRepo) GetDiscounts(ctx context.Context) ([]models.Discount, error) {
	items := []models.Discount{}
	if err := r.DB.WithContext(ctx).Order("code_key ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetDiscountByCode looks the code up by its normalized key.
func (r *GormRepo) GetDiscountByCode(ctx context.Context, code string) (*models.Discount, error) {
	var d models.Discount
	if err := r.DB.WithContext(ctx).Where("code_key = ?", models.NormalizeCode(code)).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *GormRepo) CreateDiscount(ctx context.Context, d *models.Discount) error {
	_, err := r.GetDiscountByCode(ctx, d.Code)
	if err == nil {
		return ErrDuplicate
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	err = r.DB.WithContext(ctx).Create(d).Error
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

func (r *GormRepo) DeleteDiscount(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Discount{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// redeemDiscount consumes one use of the code. The guard in the WHERE clause
// makes the check and the increment a single statement.
func redeemDiscount(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Model(&models.Discount{}).
		Where("id = ? AND used_count < usage_limit", id).
		Update("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDiscountExhausted
	}
	return nil
}

func (r *GormRepo) CountDiscounts(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Discount{}).Count(&n).Error
	return n, err
}
