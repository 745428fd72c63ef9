package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"FlashIt/internal/gateway"
	"FlashIt/pkg/config"
	"FlashIt/pkg/kit"
)

func main() {
	service := "gateway"

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()

	h, err := gateway.NewHandler(
		gateway.Deps{
			CatalogURL: cfg.Upstream.CatalogURL,
			CartURL:    cfg.Upstream.CartURL,
		},
		gateway.HTTPDeps{
			Log: log,
			Metrics: kit.MetricsDeps{
				Service:  service,
				Registry: prometheus.NewRegistry(),
				Enabled:  cfg.Metrics.Enabled,
				Token:    cfg.Metrics.Token,
			},
		},
	)
	if err != nil {
		log.Fatal("init gateway handler failed", zap.Error(err))
	}

	if err := kit.RunHTTPServer(":"+cfg.App.PortOr("8080"), h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
