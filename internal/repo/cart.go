package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/models"
)

// GetCart returns the user's lines in the order they were first added, with
// their product preloaded. A line whose product no longer exists comes back
// with a nil Product.
func (r *GormRepo) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func incrementLine(tx *gorm.DB, item *models.CartItem) (bool, error) {
	res := tx.Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).
		Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, tx.Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).First(item).Error
}

// AddToCart adds item.Quantity to the existing line or creates it. On return
// item holds the stored line.
func (r *GormRepo) AddToCart(ctx context.Context, item *models.CartItem) error {
	add := item.Quantity
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := incrementLine(tx, item)
		if err != nil || ok {
			return err
		}
		return tx.Create(item).Error
	})
	if !isDuplicate(err) {
		return err
	}

	// a concurrent add created the line first
	item.ID = uuid.Nil
	item.Quantity = add
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := incrementLine(tx, item)
		if err != nil {
			return err
		}
		if !ok {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormRepo) SetCartQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			Update("quantity", quantity)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteOneFromCart lowers the line by one and removes it once it would reach zero.
func (r *GormRepo) DeleteOneFromCart(ctx context.Context, userID, productID uuid.UUID) (bool, *models.CartItem, error) {
	var item models.CartItem
	deleted := false

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ? AND quantity > 1", userID, productID).
			Update("quantity", gorm.Expr("quantity - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
		}

		res = tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	if deleted {
		return true, nil, nil
	}
	return false, &item, nil
}

func (r *GormRepo) DeleteFromCart(ctx context.Context, userID, productID uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{}).Error
}

func (r *GormRepo) DeleteAllFromCart(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

// DeleteOrphanedCartItems removes lines whose product is gone and reports how many.
func (r *GormRepo) DeleteOrphanedCartItems(ctx context.Context) (int64, error) {
	products := r.DB.Model(&models.Product{}).Select("id")
	res := r.DB.WithContext(ctx).
		Where("product_id NOT IN (?)", products).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
