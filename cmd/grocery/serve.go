package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/grocery_shop/internal/httpserver"
	"github.com/Skotchmaster/grocery_shop/internal/metrics"
	"github.com/Skotchmaster/grocery_shop/internal/middleware/auth"
	"github.com/Skotchmaster/grocery_shop/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/grocery_shop/internal/middleware/logging"
	"github.com/Skotchmaster/grocery_shop/internal/service"
	"github.com/Skotchmaster/grocery_shop/internal/storage"
)

// grocery serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	a, ctx, err := boot(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()
	l := a.log

	pub, err := a.publisher()
	if err != nil {
		return fmt.Errorf("kafka: %w", err)
	}
	defer func() {
		if err := pub.Close(); err != nil {
			l.Error("kafka_close_error", "error", err)
		}
	}()

	idx, err := a.searchIndex()
	if err != nil {
		return fmt.Errorf("elasticsearch: %w", err)
	}

	disk, err := storage.New(ctx, a.cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	authSvc := &service.AuthService{
		Repo:          a.repo,
		JWTSecret:     a.cfg.JWTAccessSecret,
		RefreshSecret: a.cfg.JWTRefreshSecret,
		Events:        pub,
	}
	cart := &service.CartService{Repo: a.repo, Events: pub}
	discounts := &service.DiscountService{Repo: a.repo, Cart: cart, Events: pub}

	deps := &httpserver.Deps{
		DB:              a.db,
		Auth:            auth.NewAutoRefreshMiddleware(a.cfg.JWTAccessSecret, authSvc, a.cfg.CookieSecure),
		AuthHandler:     &httpserver.AuthHTTP{Svc: authSvc, Disk: disk, SecureCookie: a.cfg.CookieSecure},
		CatalogHandler:  &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: a.repo, Index: idx, Disk: disk, Events: pub}, Disk: disk},
		CategoryHandler: &httpserver.CategoryHTTP{Svc: &service.CategoryService{Repo: a.repo, Disk: disk, Events: pub}, Disk: disk},
		BannerHandler:   &httpserver.BannerHTTP{Svc: &service.BannerService{Repo: a.repo, Disk: disk}, Disk: disk},
		CartHandler:     &httpserver.CartHTTP{Svc: cart},
		DiscountHandler: &httpserver.DiscountHTTP{Svc: discounts},
		OrderHandler:    &httpserver.OrderHTTP{Svc: &service.CheckoutService{Repo: a.repo, Discounts: discounts, Events: pub}},
		AdminHandler:    &httpserver.AdminHTTP{Svc: &service.AdminService{Repo: a.repo}},
	}
	if local, ok := disk.(*storage.LocalDisk); ok {
		deps.UploadsRoot = local.Root()
		deps.UploadsURL = a.cfg.Storage.LocalURL
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(l))
	e.Use(metrics.Middleware())
	if a.cfg.CSRFEnabled {
		cc := csrf.DefaultConfig()
		cc.Secure = a.cfg.CookieSecure
		cc.SkipPrefixes = []string{"/api/auth/", "/metrics", "/health"}
		e.Use(csrf.Middleware(cc))
	}
	httpserver.Register(e, deps)

	reconciler := &service.CartReconciler{Repo: a.repo, Interval: a.cfg.CartReconcileInterval}
	go reconciler.Run(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("http_server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	l.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("server_shutdown_error", "error", err)
	}
	l.Info("shutdown_complete")
	return nil
}
