// Package migrate applies embedded SQL migrations on startup.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/and161185/securepass/migrations"
)

// Supported storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Up opens dsn with the driver's database/sql adapter and runs all pending migrations.
func Up(ctx context.Context, driver, dsn string) error {
	sqlDriver := "pgx"
	if driver == DriverSQLite {
		sqlDriver = "sqlite"
	}
	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	return UpDB(ctx, db, driver)
}

// UpDB runs all pending migrations for driver on an already open handle.
func UpDB(ctx context.Context, db *sql.DB, driver string) error {
	var dialect goose.Dialect
	switch driver {
	case DriverPostgres:
		dialect = goose.DialectPostgres
	case DriverSQLite:
		dialect = goose.DialectSQLite3
	default:
		return fmt.Errorf("unsupported storage driver %q", driver)
	}

	dir, err := fs.Sub(migrations.FS, driver)
	if err != nil {
		return err
	}
	p, err := goose.NewProvider(dialect, db, dir)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
