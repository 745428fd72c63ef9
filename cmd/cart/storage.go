package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"FlashIt/internal/cart"
	"FlashIt/pkg/config"
	"FlashIt/pkg/kit"
	"FlashIt/pkg/migrate"
)

// openSlot builds the cart storage selected by FLASHIT_STORAGE_DRIVER. The
// returned closers release it in order.
func openSlot(ctx context.Context, cfg *config.Config, log *zap.Logger) (cart.Slot, []kit.Closer, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return cart.NewMemSlots(), nil, nil

	case config.DriverRedis:
		client, err := kit.OpenRedis(ctx, kit.RedisOptions{
			URL:          cfg.Redis.URL,
			Address:      cfg.Redis.Address,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		closers := []kit.Closer{func(context.Context) error { return client.Close() }}
		return cart.NewRedisSlots(client, cfg.Session.TTL), closers, nil

	case config.DriverPostgres:
		db, err := kit.OpenPostgres(ctx, kit.PostgresOptions{
			DSN:             cfg.DB.DSN,
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		if cfg.DB.AutoMigrate {
			if err := migrate.Up(ctx, db); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		}

		watcher, err := cart.NewPostgresWatcher(ctx, cfg.DB.DSN, log)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("listen %s: %w", cart.NotifyChannel, err)
		}
		closers := []kit.Closer{
			func(context.Context) error { return watcher.Close() },
			func(context.Context) error { return db.Close() },
		}
		return cart.NewPostgresSlots(db, watcher), closers, nil

	case config.DriverSQLite:
		db, err := cart.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		slots, err := cart.NewSQLiteSlots(db)
		if err != nil {
			return nil, nil, err
		}
		closers := []kit.Closer{func(context.Context) error { return slots.Close() }}
		return slots, closers, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
