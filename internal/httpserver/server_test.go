package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/events"
	"github.com/Skotchmaster/grocery_shop/internal/middleware/auth"
	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
	"github.com/Skotchmaster/grocery_shop/internal/service"
	"github.com/Skotchmaster/grocery_shop/internal/storage"
	"github.com/Skotchmaster/grocery_shop/internal/testutil"
)

type testEnv struct {
	E      *echo.Echo
	DB     *gorm.DB
	Events *events.Memory
	Disk   *storage.LocalDisk
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb := testutil.NewDB(t)
	r := repo.New(gdb)
	ev := &events.Memory{}
	disk, err := storage.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	authSvc := &service.AuthService{
		Repo:          r,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		Events:        ev,
	}
	cart := &service.CartService{Repo: r, Events: ev}
	disc := &service.DiscountService{Repo: r, Cart: cart, Events: ev}

	e := echo.New()
	Register(e, &Deps{
		DB:              gdb,
		Auth:            auth.NewAutoRefreshMiddleware(authSvc.JWTSecret, authSvc, false),
		AuthHandler:     &AuthHTTP{Svc: authSvc, Disk: disk},
		CatalogHandler:  &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Disk: disk, Events: ev}, Disk: disk},
		CategoryHandler: &CategoryHTTP{Svc: &service.CategoryService{Repo: r, Disk: disk, Events: ev}, Disk: disk},
		BannerHandler:   &BannerHTTP{Svc: &service.BannerService{Repo: r, Disk: disk}, Disk: disk},
		CartHandler:     &CartHTTP{Svc: cart},
		DiscountHandler: &DiscountHTTP{Svc: disc},
		OrderHandler:    &OrderHTTP{Svc: &service.CheckoutService{Repo: r, Discounts: disc, Events: ev}},
		AdminHandler:    &AdminHTTP{Svc: &service.AdminService{Repo: r}},
		UploadsRoot:     disk.Root(),
		UploadsURL:      "/uploads",
	})
	return &testEnv{E: e, DB: gdb, Events: ev, Disk: disk}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doMultipart(t *testing.T, method, path string, fields map[string]string, fileField, fileName string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte("\x89PNG fake image"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

// login creates a user with role and returns the session cookies.
func (env *testEnv) login(t *testing.T, email, role string) (*models.User, []*http.Cookie) {
	t.Helper()

	user := testutil.CreateUser(t, env.DB, email, "secret1", role)
	rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": "secret1"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	return user, cookies
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
