package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"FlashIt/internal/cart"
	"FlashIt/pkg/config"
	"FlashIt/pkg/kit"
)

const startupTimeout = 30 * time.Second

func main() {
	service := "cart"

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	slot, closers, err := openSlot(ctx, cfg, log)
	if err != nil {
		log.Fatal("open cart storage failed", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	log.Info("cart storage ready", zap.String("driver", cfg.Storage.Driver))

	reg := prometheus.NewRegistry()

	carts := cart.NewRegistry(cart.RegistryOptions{
		KeyPrefix: cfg.Storage.KeyPrefix,
		Slot:      slot,
		Pricing: cart.Pricing{
			TaxRate:               cfg.Cart.TaxRate,
			FreeShippingThreshold: cfg.Cart.FreeShippingThreshold,
			ShippingCost:          cfg.Cart.ShippingCost,
			MaxQuantity:           cfg.Cart.MaxLineQuantity,
		},
		IdleTimeout: cfg.Cart.IdleTimeout,
		Log:         log,
		Metrics:     cart.NewMetrics(reg),
	})

	s := &cart.Server{
		Carts:      carts,
		Sessions:   cart.NewSessions(cfg.Session.Secret, cfg.Session.TTL),
		CookieName: cfg.Session.CookieName,
		Log:        log,
	}
	if cfg.Cart.MutationsPerMinute > 0 {
		s.Limiter = kit.NewIPRateLimiter(cfg.Cart.MutationsPerMinute, time.Minute)
	}

	h := cart.NewHandler(s, cart.HTTPDeps{
		Log: log,
		Metrics: kit.MetricsDeps{
			Service:  service,
			Registry: reg,
			Enabled:  cfg.Metrics.Enabled,
			Token:    cfg.Metrics.Token,
		},
	})

	// Carts stop watching before their storage goes away.
	closers = append([]kit.Closer{carts.Close}, closers...)

	if err := kit.RunHTTPServer(":"+cfg.App.PortOr("8084"), h, log, closers...); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
