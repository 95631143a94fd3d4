package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/platewise/backend/config"
)

// DB bundles the raw connection pool with its gorm handle.
type DB struct {
	*sql.DB
	Gorm *gorm.DB
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// New creates a new database connection for the configured driver
func New(cfg *config.Config, log *slog.Logger) (*DB, error) {
	switch cfg.DBDriver {
	case "sqlite":
		log.Info("opening sqlite database", "path", cfg.SQLitePath)
		return OpenSQLite(cfg.SQLitePath)
	case "postgres", "":
		log.Info("connecting to database", "host", cfg.DBHost, "port", cfg.DBPort, "user", cfg.DBUser)
		db, err := OpenPostgres(cfg.DSN())
		if err != nil {
			return nil, err
		}
		log.Info("successfully connected to database")
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// OpenPostgres dials postgres through lib/pq and wraps the pool in gorm.
func OpenPostgres(dsn string) (*DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	return FromSQL(sqlDB)
}

// FromSQL wraps an existing postgres pool.
func FromSQL(sqlDB *sql.DB) (*DB, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("error initializing gorm: %w", err)
	}
	return &DB{DB: sqlDB, Gorm: gdb}, nil
}

// OpenSQLite opens (or creates) a sqlite database file. Use ":memory:" for
// a throwaway database.
func OpenSQLite(path string) (*DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers; a single connection avoids SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	return &DB{DB: sqlDB, Gorm: gdb}, nil
}

// HealthCheck checks if the database is accessible
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}
