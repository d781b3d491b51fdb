package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/grocery_shop/internal/logging"
	"github.com/Skotchmaster/grocery_shop/internal/service"
	"github.com/Skotchmaster/grocery_shop/internal/storage"
	"github.com/Skotchmaster/grocery_shop/internal/transport"
)

type CategoryHTTP struct {
	Svc  *service.CategoryService
	Disk storage.Disk
}

func (h *CategoryHTTP) GetCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	items, err := h.Svc.GetCategories(ctx)
	if err != nil {
		return fail(l, "get_categories_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CategoryHTTP) bind(c echo.Context) (transport.CategoryRequest, string, error) {
	var req transport.CategoryRequest
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

	url, err := upload(c, h.Disk, "image", storage.DirCategories)
	if err != nil {
		return req, "", err
	}
	if url != "" {
		req.Image = &url
	}
	return req, url, nil
}

func (h *CategoryHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	req, uploaded, err := h.bind(c)
	if err != nil {
		return err
	}
	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		discard(c, h.Disk, uploaded)
		return fail(l, "category_create_error", err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	req, uploaded, err := h.bind(c)
	if err != nil {
		return err
	}
	cat, err := h.Svc.UpdateCategory(ctx, id, req)
	if err != nil {
		discard(c, h.Disk, uploaded)
		return fail(l, "category_update_error", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return fail(l, "category_delete_error", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "category deleted"})
}

type BannerHTTP struct {
	Svc  *service.BannerService
	Disk storage.Disk
}

func (h *BannerHTTP) GetBanners(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "banner.list")

	items, err := h.Svc.GetBanners(ctx)
	if err != nil {
		return fail(l, "get_banners_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *BannerHTTP) bind(c echo.Context) (transport.BannerRequest, string, error) {
	var req transport.BannerRequest
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
	req.Title = formString(form, "title")
	req.Description = formString(form, "description")
	if req.Discount, err = formInt(form, "discount"); err != nil {
		return req, "", err
	}

	url, err := upload(c, h.Disk, "image", storage.DirBanners)
	if err != nil {
		return req, "", err
	}
	if url != "" {
		req.ImageURL = &url
	}
	return req, url, nil
}

func (h *BannerHTTP) UploadBanner(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "banner.upload")

	req, uploaded, err := h.bind(c)
	if err != nil {
		return err
	}
	b, err := h.Svc.CreateBanner(ctx, req)
	if err != nil {
		discard(c, h.Disk, uploaded)
		return fail(l, "banner_upload_error", err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *BannerHTTP) UpdateBanner(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "banner.update")

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	req, uploaded, err := h.bind(c)
	if err != nil {
		return err
	}
	b, err := h.Svc.UpdateBanner(ctx, id, req)
	if err != nil {
		discard(c, h.Disk, uploaded)
		return fail(l, "banner_update_error", err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BannerHTTP) DeleteBanner(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "banner.delete")

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteBanner(ctx, id); err != nil {
		return fail(l, "banner_delete_error", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "banner deleted"})
}
