package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "github.com/mattn/go-sqlite3"     // registers the "sqlite3" database/sql driver

	"github.com/yigit/campus/internal/config"
	"github.com/yigit/campus/internal/pkg/logger"
)

// Dialect captures what differs between the supported engines: the driver name,
// the bind placeholder style and the auto-increment key DDL.
type Dialect struct {
	Name        string
	DriverName  string
	Placeholder squirrel.PlaceholderFormat
	// AutoIncrementPK is the column definition for a generated integer primary key
	AutoIncrementPK string
}

var (
	SQLite = Dialect{
		Name:            config.DriverSQLite,
		DriverName:      "sqlite3",
		Placeholder:     squirrel.Question,
		AutoIncrementPK: "INTEGER PRIMARY KEY AUTOINCREMENT",
	}
	Postgres = Dialect{
		Name:            config.DriverPostgres,
		DriverName:      "pgx",
		Placeholder:     squirrel.Dollar,
		AutoIncrementPK: "BIGSERIAL PRIMARY KEY",
	}
)

// DialectFor returns the dialect for a configured driver name
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverSQLite:
		return SQLite, nil
	case config.DriverPostgres:
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Database is an open handle plus the dialect it speaks
type Database struct {
	DB      *sql.DB
	Dialect Dialect
}

// Open connects to the configured store and verifies the connection.
func Open(cfg *config.Config) (*Database, error) {
	dialect, err := DialectFor(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}

	if dialect.Name == config.DriverSQLite {
		if dir := filepath.Dir(cfg.Database.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	return OpenDSN(dialect, cfg.DSN(), PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime(),
	})
}

// PoolOptions tunes the database/sql pool
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// OpenDSN opens a handle for an explicit dialect and data source name.
func OpenDSN(dialect Dialect, dsn string, opts PoolOptions) (*Database, error) {
	handle, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.Name, err)
	}

	if opts.MaxOpenConns > 0 {
		handle.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		handle.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		handle.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := handle.PingContext(ctx); err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("failed to establish database connection: %w", err)
	}

	logger.Info().Str("driver", dialect.Name).Msg("Database connection established")
	return &Database{DB: handle, Dialect: dialect}, nil
}

// Close releases the pool
func (d *Database) Close() error {
	if d == nil || d.DB == nil {
		return nil
	}
	return d.DB.Close()
}
