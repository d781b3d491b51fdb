package httpserver

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/grocery_shop/internal/middleware/auth"
	"github.com/Skotchmaster/grocery_shop/internal/service"
	"github.com/Skotchmaster/grocery_shop/internal/storage"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrInvalidDiscount, http.StatusBadRequest},
	{service.ErrUnauthenticated, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
}

// fail logs err under event and converts it to an *echo.HTTPError. Service
// messages are passed through without the trailing sentinel text.
func fail(l *slog.Logger, event string, err error) error {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			msg := err.Error()
			if s.err != service.ErrInvalidDiscount {
				msg = strings.TrimSuffix(msg, ": "+s.err.Error())
			}
			l.Warn(event, "status", s.status, "reason", msg, "error", err)
			return echo.NewHTTPError(s.status, msg)
		}
	}
	l.Error(event, "status", 500, "reason", "internal error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

func GetID(c echo.Context) (uuid.UUID, error) {
	id, err := auth.UserID(c)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

func paramID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, name+" is not a valid id")
	}
	return id, nil
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// formFields reads a multipart or urlencoded body.
func formFields(c echo.Context) (url.Values, error) {
	if isMultipart(c) {
		mf, err := c.MultipartForm()
		if err != nil {
			return nil, err
		}
		return url.Values(mf.Value), nil
	}
	return c.FormParams()
}

func formString(v url.Values, key string) *string {
	if _, ok := v[key]; !ok {
		return nil
	}
	s := v.Get(key)
	return &s
}

func formFloat(v url.Values, key string) (*float64, error) {
	s := formString(v, key)
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, key+" must be a number")
	}
	return &f, nil
}

func formInt(v url.Values, key string) (*int, error) {
	s := formString(v, key)
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, key+" must be an integer")
	}
	return &n, nil
}

// upload stores the optional file in field under dir. It returns "" when the
// request carries no such file.
func upload(c echo.Context, d storage.Disk, field, dir string) (string, error) {
	if d == nil || !isMultipart(c) {
		return "", nil
	}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid "+field+" upload")
	}
	u, err := storage.SaveUpload(c.Request().Context(), d, dir, fh)
	if errors.Is(err, storage.ErrUnsupportedType) {
		return "", echo.NewHTTPError(http.StatusBadRequest, "unsupported image type")
	}
	if err != nil {
		return "", err
	}
	return u, nil
}

// discard deletes a stored image and ignores failures.
func discard(c echo.Context, d storage.Disk, url string) {
	if d == nil || url == "" {
		return
	}
	_ = storage.Remove(c.Request().Context(), d, url)
}
