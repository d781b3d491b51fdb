package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	newID(&t.ID)
	return nil
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	newID(&p.ID)
	return nil
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}

func (d *Discount) BeforeCreate(tx *gorm.DB) error {
	newID(&d.ID)
	return nil
}

func (d *Discount) BeforeSave(tx *gorm.DB) error {
	d.CodeKey = NormalizeCode(d.Code)
	return nil
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	newID(&o.ID)
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	newID(&i.ID)
	return nil
}

func (b *Banner) BeforeCreate(tx *gorm.DB) error {
	newID(&b.ID)
	return nil
}

// NormalizeCode is the lookup key for discount codes: "save10 " and "SAVE10" are the same code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
