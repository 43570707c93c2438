package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"menupricing/internal/config"
	"menupricing/internal/metrics"
	"menupricing/internal/popup"
	"menupricing/internal/storage"
	cartstore "menupricing/internal/storage/redis"
	"menupricing/pkg/api"
	"menupricing/pkg/logger"
	"menupricing/pkg/redis"
)

type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	cache   *redis.Client
	catalog *storage.PostgresStorage
	cart    *cartstore.CartStorage
	popup   *popup.Service

	registry   *prometheus.Registry
	metricsOut string
}

// newApp wires every dependency. When metricsOut is set, Close writes a metrics snapshot
// there ("-" for stderr).
func newApp(ctx context.Context, metricsOut string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: zapLogger, registry: prometheus.NewRegistry(), metricsOut: metricsOut}

	a.cache = redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.CatalogTTL)
	a.catalog, err = storage.NewPostgresStorage(ctx, cfg.Database, reachableCache(ctx, a.cache, zapLogger), cfg.Redis.CatalogTTL, zapLogger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to init PostgreSQL storage: %w", err)
	}

	a.cart = cartstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.CartRecordTTL)

	var source popup.CatalogSource = a.catalog
	if cfg.Catalog.URL != "" {
		zapLogger.Info("Using remote catalog for parent lookups", zap.String("url", cfg.Catalog.URL))
		source = api.NewClient(cfg.Catalog.URL, cfg.Catalog.Token, cfg.Catalog.Timeout, zapLogger)
	}

	a.popup = popup.New(source, a.cart, zapLogger, metrics.New(a.registry), popup.Options{
		FetchTimeout:    cfg.Popup.ParentFetchTimeout,
		FetchMaxElapsed: cfg.Popup.ParentFetchMaxElapsed,
	})

	return a, nil
}

// reachableCache returns nil when Redis does not answer, so the catalog reads Postgres directly.
func reachableCache(ctx context.Context, c *redis.Client, logger *zap.Logger) storage.Cache {
	if err := c.Ping(ctx); err != nil {
		logger.Warn("Redis unavailable, catalog cache disabled", zap.Error(err))
		return nil
	}
	return c
}

func (a *app) Close() {
	if a.metricsOut != "" {
		if err := a.writeMetrics(); err != nil {
			a.logger.Warn("Failed to write metrics snapshot", zap.Error(err))
		}
	}
	if a.catalog != nil {
		_ = a.catalog.Close()
	}
	if a.cart != nil {
		a.cart.Close()
	}
	if a.cache != nil {
		a.cache.Close()
	}
	_ = a.logger.Sync()
}

func (a *app) writeMetrics() error {
	if a.metricsOut == "-" {
		return metrics.WriteText(os.Stderr, a.registry)
	}

	f, err := os.Create(a.metricsOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", a.metricsOut, err)
	}
	defer f.Close()

	return metrics.WriteText(f, a.registry)
}
