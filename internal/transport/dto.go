package transport

// ProductRequest is used for both create and update; nil fields are left
// untouched on update.
type ProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock"`
	Image       *string  `json:"image"`
}

type CategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

type BannerRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Discount    *int    `json:"discount"`
	ImageURL    *string `json:"imageUrl"`
}

// AddToCartRequest defaults Quantity to 1 when omitted.
type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type UpdateCartRequest struct {
	Quantity *int `json:"quantity"`
}

type ApplyDiscountRequest struct {
	Code     string   `json:"code"`
	Subtotal *float64 `json:"subtotal"`
}

type CreateDiscountRequest struct {
	Code       string `json:"code"`
	Percentage int    `json:"percentage"`
	UsageLimit int    `json:"usageLimit"`
}

// PlaceOrderRequest mirrors what the storefront posts. Items are accepted
// for compatibility and ignored; the cart is the source of truth.
type PlaceOrderRequest struct {
	UserID       string           `json:"userId"`
	UserName     string           `json:"userName"`
	Address      string           `json:"address"`
	Items        []OrderItemInput `json:"items"`
	TotalAmount  float64          `json:"totalAmount"`
	DiscountCode string           `json:"discountCode"`
}

type OrderItemInput struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Message string `json:"message"`
	User    any    `json:"user,omitempty"`
}
