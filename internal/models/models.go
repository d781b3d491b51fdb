package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	OrderStatusConfirmed = "confirmed"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"   json:"id"`
	Name         string    `gorm:"not null"               json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"   json:"email"`
	PasswordHash string    `gorm:"not null"               json:"-"`
	Role         string    `gorm:"not null;default:user"  json:"role"`
	Address      string    `                              json:"address"`
	ProfileImage string    `                              json:"profileImage"`
	CreatedAt    time.Time `                              json:"createdAt"`
}

type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Token     string    `gorm:"uniqueIndex;not null"  json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	JTI       string    `gorm:"uniqueIndex;not null"  json:"jti"`
	ExpiresAt int64     `gorm:"not null"              json:"expiresAt"`
	Revoked   bool      `gorm:"default:false"         json:"revoked"`
}

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"            json:"id"`
	Name        string    `gorm:"not null;index"                  json:"name"`
	Description string    `                                       json:"description"`
	Price       float64   `gorm:"not null;check:price >= 0"       json:"price"`
	Category    string    `gorm:"index"                           json:"category"`
	Stock       int       `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	Image       string    `                                       json:"image"`
	CreatedAt   time.Time `                                       json:"createdAt"`
	UpdatedAt   time.Time `                                       json:"updatedAt"`
}

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Name        string    `gorm:"uniqueIndex;not null"  json:"name"`
	Description string    `                             json:"description"`
	Image       string    `                             json:"image"`
}

// CartItem is one (user, product) line. Quantity is never stored below 1.
type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                          json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_product;not null" json:"userId"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_product;not null" json:"productId"`
	Quantity  int       `gorm:"not null;default:1;check:quantity > 0"          json:"quantity"`
	CreatedAt time.Time `gorm:"index"                                        json:"createdAt"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

type Discount struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"                   json:"id"`
	Code       string    `gorm:"not null"                               json:"code"`
	CodeKey    string    `gorm:"uniqueIndex;not null"                   json:"-"`
	Percentage int       `gorm:"not null;check:percentage BETWEEN 1 AND 100" json:"percentage"`
	UsageLimit int       `gorm:"not null;check:usage_limit > 0"         json:"usageLimit"`
	UsedCount  int       `gorm:"not null;default:0"                     json:"usedCount"`
	CreatedAt  time.Time `                                              json:"createdAt"`
}

// Redeemable reports whether the code still has uses left.
func (d Discount) Redeemable() bool {
	return d.UsedCount < d.UsageLimit
}

type Order struct {
	ID                 uuid.UUID   `gorm:"type:uuid;primaryKey"        json:"id"`
	UserID             uuid.UUID   `gorm:"type:uuid;index;not null"    json:"userId"`
	UserName           string      `gorm:"not null"                    json:"userName"`
	Address            string      `gorm:"not null"                    json:"address"`
	Items              []OrderItem `gorm:"foreignKey:OrderID"          json:"items"`
	Subtotal           float64     `gorm:"not null"                    json:"subtotal"`
	DiscountCode       string      `                                   json:"discountCode,omitempty"`
	DiscountPercentage int         `gorm:"not null;default:0"          json:"discountPercentage"`
	TotalAmount        float64     `gorm:"not null"                    json:"totalAmount"`
	Status             string      `gorm:"not null"                    json:"status"`
	CreatedAt          time.Time   `gorm:"index"                       json:"date"`
}

// OrderItem snapshots product name and price at placement time; it does not
// reference the products table so orders survive catalog changes.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"     json:"-"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"       json:"id"`
	Name      string    `gorm:"not null"                 json:"name"`
	Price     float64   `gorm:"not null"                 json:"price"`
	Quantity  int       `gorm:"not null;check:quantity > 0" json:"quantity"`
}

type Banner struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ImageURL    string    `gorm:"not null"             json:"imageUrl"`
	Title       string    `                            json:"title"`
	Description string    `                            json:"description"`
	Discount    int       `gorm:"not null;default:0"   json:"discount"`
	CreatedAt   time.Time `                            json:"createdAt"`
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&RefreshToken{},
		&Category{},
		&Product{},
		&CartItem{},
		&Discount{},
		&Order{},
		&OrderItem{},
		&Banner{},
	}
}
