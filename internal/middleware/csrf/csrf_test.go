package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(cfg Config) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(cfg))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/api/cart", ok)
	e.POST("/api/cart", ok)
	e.POST("/api/auth/login", ok)
	return e
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCSRF_GetIssuesToken(t *testing.T) {
	e := newServer(Config{})
	rec := do(e, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	token := rec.Header().Get("X-CSRF-Token")
	assert.NotEmpty(t, token)

	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "XSRF-TOKEN" {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, token, cookie.Value)
}

func TestCSRF_PostRequiresMatchingHeader(t *testing.T) {
	e := newServer(Config{})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusForbidden},
		{name: "wrong header", header: "other", want: http.StatusForbidden},
		{name: "matching header", header: "tok123", want: http.StatusOK},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/cart", nil)
			req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok123"})
			if tt.header != "" {
				req.Header.Set("X-CSRF-Token", tt.header)
			}
			assert.Equal(t, tt.want, do(e, req).Code)
		})
	}
}

func TestCSRF_SkipPrefixes(t *testing.T) {
	e := newServer(Config{SkipPrefixes: []string{"/api/auth/"}})
	rec := do(e, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRF_SameOrigin(t *testing.T) {
	e := newServer(Config{EnforceSameOrigin: true})

	req := httptest.NewRequest(http.MethodPost, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok123"})
	req.Header.Set("X-CSRF-Token", "tok123")
	req.Header.Set("Origin", "http://evil.example")
	assert.Equal(t, http.StatusForbidden, do(e, req).Code)

	req.Header.Set("Origin", "http://"+req.Host)
	assert.Equal(t, http.StatusOK, do(e, req).Code)
}
