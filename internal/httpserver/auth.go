package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/grocery_shop/internal/logging"
	"github.com/Skotchmaster/grocery_shop/internal/service"
	"github.com/Skotchmaster/grocery_shop/internal/storage"
	"github.com/Skotchmaster/grocery_shop/internal/tokens"
	"github.com/Skotchmaster/grocery_shop/internal/transport"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	Disk         storage.Disk
	SecureCookie bool
}

func (h *AuthHTTP) setSession(c echo.Context, p *tokens.Pair) {
	for _, ck := range tokens.PairCookies(p, h.SecureCookie) {
		c.SetCookie(ck)
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Register(ctx, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
	})
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, transport.AuthResponse{Message: "user registered", User: user})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, pair, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_error", err)
	}
	h.setSession(c, pair)

	l.Info("login_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, transport.AuthResponse{Message: "logged in", User: user})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	ck, err := c.Cookie(tokens.RefreshCookie)
	if err != nil || ck.Value == "" {
		l.Warn("refresh_error", "status", 401, "reason", "refresh token missing")
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	pair, err := h.Svc.Refresh(ctx, ck.Value)
	if err != nil {
		c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
		c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
		return fail(l, "refresh_error", err)
	}
	h.setSession(c, pair)
	return c.JSON(http.StatusOK, transport.AuthResponse{Message: "session refreshed"})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil {
		if err := h.Svc.LogOut(ctx, ck.Value); err != nil {
			l.Error("logout_error", "status", 500, "reason", "cannot revoke refresh token", "error", err)
		}
	}
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
	return c.JSON(http.StatusOK, transport.AuthResponse{Message: "logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	userID, err := GetID(c)
	if err != nil {
		return err
	}
	user, err := h.Svc.Me(ctx, userID)
	if err != nil {
		return fail(l, "me_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile accepts name and address fields plus an optional
// "profileImage" file, as JSON or multipart.
func (h *AuthHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.update")

	userID, err := GetID(c)
	if err != nil {
		return err
	}

	var in service.ProfileUpdate
	uploaded := ""
	if isMultipart(c) {
		form, err := formFields(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
		}
		in.Name = formString(form, "name")
		in.Address = formString(form, "address")
		if uploaded, err = upload(c, h.Disk, "profileImage", storage.DirProfiles); err != nil {
			return err
		}
		if uploaded != "" {
			in.ProfileImage = &uploaded
		}
	} else {
		var req struct {
			Name    *string `json:"name"`
			Address *string `json:"address"`
		}
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}
		in.Name, in.Address = req.Name, req.Address
	}
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}

	user, replaced, err := h.Svc.UpdateProfile(ctx, userID, in)
	if err != nil {
		discard(c, h.Disk, uploaded)
		return fail(l, "update_profile_error", err)
	}
	discard(c, h.Disk, replaced)

	l.Info("update_profile_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, transport.AuthResponse{Message: "profile updated", User: user})
}
