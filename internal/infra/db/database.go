package db

import (
	"context"
	"database/sql"
	"embed"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"request-desk/internal/pkg/config"
	"request-desk/internal/pkg/errs"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/*/*.sql
var migrations embed.FS

// goose keeps its dialect and filesystem in package globals
var gooseMu sync.Mutex

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverPostgres:
		return Postgres, nil
	case config.DriverSQLite:
		return SQLite, nil
	default:
		return Dialect{}, errs.Newf("no SQL dialect for driver %q", driver)
	}
}

// Connect opens the database selected by cfg.Store.Driver.
func Connect(cfg config.Config) (*sql.DB, Dialect, func(), error) {
	dialect, err := DialectFor(cfg.Store.Driver)
	if err != nil {
		return nil, Dialect{}, nil, err
	}

	var dsn string
	switch dialect.Name {
	case config.DriverPostgres:
		dsn = cfg.DB.BuildDSN()
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.Store.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, Dialect{}, nil, errs.Wrap(err, "failed to create sqlite directory")
			}
		}
		dsn = cfg.Store.SQLiteDSN()
	}

	db, err := Open(dialect, dsn, cfg.DB)
	if err != nil {
		return nil, Dialect{}, nil, err
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}

	return db, dialect, cleanup, nil
}

func Open(dialect Dialect, dsn string, pool config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, errs.Wrap(err, "failed to open database")
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(err, "failed to ping database")
	}

	if dialect.Name == config.DriverSQLite {
		// a single connection serialises every statement
		db.SetMaxOpenConns(1)
	} else if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
		db.SetMaxIdleConns(max(pool.MaxOpenConns/2, 1))
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	return db, nil
}

// Migrate applies every pending embedded migration for the dialect.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect.goose); err != nil {
		return errs.Wrap(err, "failed to select migration dialect")
	}
	if err := goose.UpContext(ctx, db, "migrations/"+dialect.Name); err != nil {
		return errs.Wrap(err, "failed to apply migrations")
	}
	slog.Info("database migrations applied", "dialect", dialect.Name)
	return nil
}
