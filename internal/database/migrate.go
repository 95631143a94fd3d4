package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/platewise/backend/internal/models"
)

// MigrationsDir is the goose directory inside Migrations.
const MigrationsDir = "migrations"

// Migrations holds the goose SQL migrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate brings the schema up to date. Postgres runs the embedded goose
// migrations; sqlite (development and tests) uses gorm auto-migration.
func Migrate(ctx context.Context, db *DB) error {
	if db.Gorm.Dialector.Name() == "sqlite" {
		return AutoMigrate(db.Gorm)
	}

	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db.DB, MigrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// AutoMigrate creates the tables straight from the gorm models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Meal{})
}
