package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/grocery_shop/internal/logging"
	"github.com/Skotchmaster/grocery_shop/internal/service"
	"github.com/Skotchmaster/grocery_shop/internal/storage"
	"github.com/Skotchmaster/grocery_shop/internal/transport"
	"github.com/Skotchmaster/grocery_shop/internal/util"
)

type CatalogHTTP struct {
	Svc  *service.CatalogService
	Disk storage.Disk
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.GetProducts(ctx, c.QueryParam("category"), offset, limit)
	if err != nil {
		return fail(l, "get_products_error", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": util.Meta(page, offset, limit, total),
	})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := paramID(c, "id")
	if err != nil {
		l.Warn("get_product_failed", "status", 400, "reason", "id is not a uuid")
		return err
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return fail(l, "search_error", err)
	}

	l.Info("search_success", "total", total)
	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": util.Meta(page, offset, limit, total),
	})
}

// bindProduct accepts JSON or a multipart form with an optional "image" file.
func (h *CatalogHTTP) bindProduct(c echo.Context) (transport.ProductRequest, string, error) {
	var req transport.ProductRequest
	if !isMultipart(c) {
		if err := c.Bind(&req); err != nil {
			return req, "", echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}
		return req, "", nil
	}

	form, err := formFields(c)
	if err != nil {
		return req, "", echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	req.Name = formString(form, "name")
	req.Description = formString(form, "description")
	req.Category = formString(form, "category")
	if req.Price, err = formFloat(form, "price"); err != nil {
		return req, "", err
	}
	if req.Stock, err = formInt(form, "stock"); err != nil {
		return req, "", err
	}

	url, err := upload(c, h.Disk, "image", storage.DirGroceries)
	if err != nil {
		return req, "", err
	}
	if url != "" {
		req.Image = &url
	}
	return req, url, nil
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	req, uploaded, err := h.bindProduct(c)
	if err != nil {
		l.Warn("product_create_error", "status", 400, "error", err)
		return err
	}

	prod, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		discard(c, h.Disk, uploaded)
		return fail(l, "product_create_error", err)
	}

	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, prod)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	req, uploaded, err := h.bindProduct(c)
	if err != nil {
		l.Warn("product_update_error", "status", 400, "error", err)
		return err
	}

	prod, err := h.Svc.UpdateProduct(ctx, id, req)
	if err != nil {
		discard(c, h.Disk, uploaded)
		return fail(l, "product_update_error", err)
	}

	l.Info("update_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "product_delete_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, map[string]string{"message": "product deleted"})
}
