package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/db"
	"github.com/Skotchmaster/grocery_shop/internal/metrics"
	"github.com/Skotchmaster/grocery_shop/internal/middleware/auth"
)

type Deps struct {
	DB   *gorm.DB
	Auth *auth.AutoRefreshMiddleware

	AuthHandler     *AuthHTTP
	CatalogHandler  *CatalogHTTP
	CategoryHandler *CategoryHTTP
	BannerHandler   *BannerHTTP
	CartHandler     *CartHTTP
	DiscountHandler *DiscountHTTP
	OrderHandler    *OrderHTTP
	AdminHandler    *AdminHTTP

	// UploadsRoot, when set, is served under UploadsURL.
	UploadsRoot string
	UploadsURL  string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)
	e.GET("/metrics", metrics.Handler())
	if d.UploadsRoot != "" && d.UploadsURL != "" {
		e.Static(d.UploadsURL, d.UploadsRoot)
	}

	api := e.Group("/api")
	api.GET("/health", d.ready)

	authGrp := api.Group("/auth")
	authGrp.POST("/register", d.AuthHandler.Register)
	authGrp.POST("/login", d.AuthHandler.Login)
	authGrp.POST("/logout", d.AuthHandler.LogOut)
	authGrp.POST("/refresh", d.AuthHandler.Refresh)
	authGrp.GET("/me", d.AuthHandler.Me, d.Auth.RequireAuth)
	authGrp.POST("/update", d.AuthHandler.UpdateProfile, d.Auth.RequireAuth)

	groceries := api.Group("/groceries")
	groceries.GET("", d.CatalogHandler.GetProducts)
	groceries.GET("/search", d.CatalogHandler.Search)
	groceries.GET("/:id", d.CatalogHandler.GetProduct)
	groceries.POST("", d.CatalogHandler.CreateProduct, d.Auth.RequireAdmin)
	groceries.PUT("/:id", d.CatalogHandler.UpdateProduct, d.Auth.RequireAdmin)
	groceries.DELETE("/:id", d.CatalogHandler.DeleteProduct, d.Auth.RequireAdmin)

	categories := api.Group("/categories")
	categories.GET("", d.CategoryHandler.GetCategories)
	categories.POST("", d.CategoryHandler.CreateCategory, d.Auth.RequireAdmin)
	categories.PUT("/:id", d.CategoryHandler.UpdateCategory, d.Auth.RequireAdmin)
	categories.DELETE("/:id", d.CategoryHandler.DeleteCategory, d.Auth.RequireAdmin)

	banners := api.Group("/banners")
	banners.GET("", d.BannerHandler.GetBanners)
	banners.POST("/upload", d.BannerHandler.UploadBanner, d.Auth.RequireAdmin)
	banners.PUT("/:id", d.BannerHandler.UpdateBanner, d.Auth.RequireAdmin)
	banners.DELETE("/:id", d.BannerHandler.DeleteBanner, d.Auth.RequireAdmin)

	cart := api.Group("/cart", d.Auth.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.PUT("/:productId", d.CartHandler.UpdateQuantity)
	cart.DELETE("/:productId", d.CartHandler.RemoveItem)
	cart.POST("/:productId/decrement", d.CartHandler.DecrementItem)

	discounts := api.Group("/discounts")
	discounts.GET("", d.DiscountHandler.GetDiscounts)
	discounts.POST("/apply", d.DiscountHandler.Apply, d.Auth.RequireAuth)
	discounts.POST("", d.DiscountHandler.CreateDiscount, d.Auth.RequireAdmin)
	discounts.DELETE("/:id", d.DiscountHandler.DeleteDiscount, d.Auth.RequireAdmin)

	orders := api.Group("/orders", d.Auth.RequireAuth)
	orders.POST("", d.OrderHandler.PlaceOrder)
	orders.GET("", d.OrderHandler.GetMyOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)

	admin := api.Group("/admin", d.Auth.RequireAdmin)
	admin.GET("/overview", d.AdminHandler.Overview)
	admin.GET("/orders", d.OrderHandler.GetAllOrders)
}

func (d *Deps) ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := db.Ping(ctx, d.DB); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
