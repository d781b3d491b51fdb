package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/grocery_shop/internal/logging"
	"github.com/Skotchmaster/grocery_shop/internal/metrics"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
)

// CartReconciler periodically drops cart lines whose product is gone.
type CartReconciler struct {
	Repo     *repo.GormRepo
	Interval time.Duration
}

func (r *CartReconciler) RunOnce(ctx context.Context) (int64, error) {
	n, err := r.Repo.DeleteOrphanedCartItems(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.OrphanedCartLines.Add(float64(n))
		logging.FromContext(ctx).Info("cart_orphans_removed", "count", n)
	}
	return n, nil
}

// Run blocks until ctx is cancelled.
func (r *CartReconciler) Run(ctx context.Context) {
	l := logging.FromContext(ctx).With("worker", "cart_reconciler")
	interval := r.Interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.Info("reconciler_started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			l.Info("reconciler_stopped")
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				l.Error("reconcile_error", "error", err)
			}
		}
	}
}
