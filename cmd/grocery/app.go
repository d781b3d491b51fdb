package main

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/internal/config"
	"github.com/Skotchmaster/grocery_shop/internal/db"
	"github.com/Skotchmaster/grocery_shop/internal/events"
	"github.com/Skotchmaster/grocery_shop/internal/logging"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
	"github.com/Skotchmaster/grocery_shop/internal/search"
)

// app holds what every subcommand needs: settings, a logger and the database.
type app struct {
	cfg  config.Config
	log  *slog.Logger
	db   *gorm.DB
	repo *repo.GormRepo
}

// boot loads settings, opens the database and applies migrations. The full
// server configuration is only checked when strict is set.
func boot(ctx context.Context, strict bool) (*app, context.Context, error) {
	cfg := config.Load()
	l := logging.New(cfg.LogLevel)
	ctx = logging.IntoContext(ctx, l)
	if strict {
		if err := cfg.Validate(); err != nil {
			return nil, ctx, err
		}
	}

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, ctx, err
	}
	if err := db.Migrate(ctx, gdb); err != nil {
		closeDB(l, gdb)
		return nil, ctx, err
	}
	return &app{cfg: cfg, log: l, db: gdb, repo: repo.New(gdb)}, ctx, nil
}

func (a *app) close() {
	closeDB(a.log, a.db)
}

func closeDB(l *slog.Logger, gdb *gorm.DB) {
	sqlDB, err := gdb.DB()
	if err != nil {
		l.Error("db_close_error", "error", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		l.Error("db_close_error", "error", err)
	}
}

// publisher returns a Kafka producer when brokers are configured.
func (a *app) publisher() (events.Publisher, error) {
	if len(a.cfg.KafkaBrokers) == 0 {
		a.log.Info("events_disabled", "reason", "KAFKA_BROKERS not set")
		return events.Nop{}, nil
	}
	return events.NewProducer(a.cfg.KafkaBrokers, a.log)
}

// searchIndex returns nil when ES_URL is not set; catalog search then runs in SQL.
func (a *app) searchIndex() (search.Index, error) {
	if a.cfg.ESURL == "" {
		a.log.Info("search_index_disabled", "reason", "ES_URL not set")
		return nil, nil
	}
	es, err := search.NewClient(a.cfg.ESURL, a.cfg.ESUser, a.cfg.ESPassword)
	if err != nil {
		return nil, err
	}
	return search.NewESIndex(es, a.cfg.ESIndex), nil
}
