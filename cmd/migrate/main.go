// Command migrate applies the FlashIt schema with goose.
//
//	migrate [up|down|status|version|redo|reset] [args...]
package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"FlashIt/pkg/config"
	"FlashIt/pkg/kit"
	"FlashIt/pkg/migrate"
)

const timeout = 2 * time.Minute

func main() {
	flag.Parse()

	command := "up"
	var args []string
	if flag.NArg() > 0 {
		command = flag.Arg(0)
		args = flag.Args()[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger("migrate", "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger("migrate", cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := kit.OpenPostgres(ctx, kit.PostgresOptions{DSN: cfg.DB.DSN})
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := migrate.Run(ctx, db, command, args...); err != nil {
		log.Fatal("migrate failed", zap.String("command", command), zap.Error(err))
	}
	log.Info("migrate done", zap.String("command", command))
}
