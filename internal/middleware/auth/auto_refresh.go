// Package auth guards routes with the session cookies. An expired access
// token is transparently renewed from the refresh cookie.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/grocery_shop/internal/logging"
	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/tokens"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// Refresher rotates a refresh token into a new session.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error)
}

type AutoRefreshMiddleware struct {
	JWTSecret    []byte
	Refresher    Refresher
	SecureCookie bool
}

func NewAutoRefreshMiddleware(secret []byte, refresher Refresher, secure bool) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{
		JWTSecret:    secret,
		Refresher:    refresher,
		SecureCookie: secure,
	}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *AutoRefreshMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *AutoRefreshMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *AutoRefreshMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "auth")

		access := cookieValue(c, tokens.AccessCookie)
		if access != "" {
			claims, err := tokens.AccessClaimsFromToken(access, m.JWTSecret)
			if err == nil {
				return m.admit(c, next, claims, validator)
			}
			if !errors.Is(err, jwt.ErrTokenExpired) {
				l.Warn("auth_error", "status", 401, "reason", "invalid access token", "error", err)
				clearAuthCookies(c)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
		}

		refresh := cookieValue(c, tokens.RefreshCookie)
		if refresh == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		if m.Refresher == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
		}

		pair, err := m.Refresher.Refresh(c.Request().Context(), refresh)
		if err != nil {
			l.Warn("auth_error", "status", 401, "reason", "refresh failed", "error", err)
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
		}
		for _, ck := range tokens.PairCookies(pair, m.SecureCookie) {
			c.SetCookie(ck)
		}

		claims, err := tokens.AccessClaimsFromToken(pair.AccessToken, m.JWTSecret)
		if err != nil {
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "new access token invalid")
		}
		return m.admit(c, next, claims, validator)
	}
}

func (m *AutoRefreshMiddleware) admit(c echo.Context, next echo.HandlerFunc, claims *tokens.AccessClaims, validator ValidatorFunc) error {
	if validator != nil {
		if err := validator(claims); err != nil {
			return err
		}
	}
	setUserContext(c, claims)
	return next(c)
}

func cookieValue(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

func clearAuthCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(ctxUserID, claims.Subject)
	c.Set(ctxRole, claims.Role)
}

var ErrNoSession = errors.New("no session user")

// UserID returns the authenticated user set by RequireAuth or RequireAdmin.
func UserID(c echo.Context) (uuid.UUID, error) {
	raw, ok := c.Get(ctxUserID).(string)
	if !ok || raw == "" {
		return uuid.Nil, ErrNoSession
	}
	return uuid.Parse(raw)
}

func Role(c echo.Context) string {
	role, _ := c.Get(ctxRole).(string)
	return role
}
