package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pressly/goose/v3"

	"github.com/platewise/backend/config"
	"github.com/platewise/backend/internal/database"
	"github.com/platewise/backend/internal/logging"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	status := flag.Bool("status", false, "Print migration status and exit")
	flag.Parse()

	if err := run(*rollback, *status); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(rollback, status bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.New(cfg.Env, cfg.LogLevel)

	db, err := database.New(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if cfg.DBDriver == "sqlite" {
		if rollback || status {
			return fmt.Errorf("rollback and status need postgres; sqlite schemas are auto-migrated")
		}
		return database.Migrate(ctx, db)
	}

	goose.SetBaseFS(database.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch {
	case status:
		return goose.StatusContext(ctx, db.DB, database.MigrationsDir)
	case rollback:
		logger.Info("rolling back last migration")
		return goose.DownContext(ctx, db.DB, database.MigrationsDir)
	default:
		logger.Info("applying migrations")
		return goose.UpContext(ctx, db.DB, database.MigrationsDir)
	}
}
