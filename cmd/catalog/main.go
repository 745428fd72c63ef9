package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"FlashIt/internal/catalog"
	"FlashIt/pkg/config"
	"FlashIt/pkg/kit"
	"FlashIt/pkg/migrate"
)

const startupTimeout = 30 * time.Second

func main() {
	service := "catalog"

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	var (
		source  catalog.Source = catalog.NewMemStore()
		closers []kit.Closer
	)

	if cfg.DB.DSN != "" {
		db, err := kit.OpenPostgres(ctx, kit.PostgresOptions{
			DSN:             cfg.DB.DSN,
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		})
		if err != nil {
			log.Fatal("db connect failed", zap.Error(err))
		}
		closers = append(closers, func(context.Context) error { return db.Close() })

		if cfg.DB.AutoMigrate {
			if err := migrate.Up(ctx, db); err != nil {
				log.Fatal("migrations failed", zap.Error(err))
			}
		}

		source = catalog.NewPostgresStore(db)
		log.Info("catalog source: postgres")
	} else {
		log.Info("catalog source: memory")
	}

	cat, err := catalog.Load(ctx, source)
	if err != nil {
		log.Fatal("load catalog failed", zap.Error(err))
	}
	log.Info("catalog loaded", zap.Int("products", cat.Len()))

	s := &catalog.Server{Catalog: cat, Source: source, Log: log}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log: log,
		Metrics: kit.MetricsDeps{
			Service:  service,
			Registry: prometheus.NewRegistry(),
			Enabled:  cfg.Metrics.Enabled,
			Token:    cfg.Metrics.Token,
		},
	})

	if err := kit.RunHTTPServer(":"+cfg.App.PortOr("8082"), h, log, closers...); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
