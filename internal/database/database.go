package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"mart_inventory/pkg/utils"
)

//go:embed schema.sql
var schemaSQL string

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Open opens the database, verifies the connection and applies the schema.
// The caller owns the returned handle and passes it to repositories and services.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	switch driver {
	case DriverPostgres, DriverSQLite:
	case "sqlite":
		driver = DriverSQLite
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: %s, %s)", driver, DriverSQLite, DriverPostgres)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer; one connection also keeps ":memory:" databases alive.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if err := applySchema(ctx, db, driver); err != nil {
		db.Close()
		return nil, err
	}

	// Reads tolerate older layouts; only writes need the sync columns.
	if err := CheckWritable(ctx, db); err != nil {
		utils.LogError(err, "Existing tables lack the sync columns; /sync will fail until they are migrated")
	}

	utils.LogInfo("Successfully connected to the database", map[string]interface{}{"driver": driver})
	return db, nil
}

// writeColumns are the columns bulk sync inserts into, per table.
var writeColumns = []struct {
	table   string
	columns string
}{
	{"products", "id, name, category, price, stock, reorderLevel, unitsSold"},
	{"categories", "name"},
	{"settings", "id, martName, adminName, address, contact, currency, accessPin, useExternalDB, apiEndpoint"},
	{"transactions", "id, checkoutId, productId, productName, type, quantity, price, total, timestamp"},
}

// CheckWritable reports every table that is missing a column bulk sync writes.
func CheckWritable(ctx context.Context, db *sql.DB) error {
	var errs []error
	for _, w := range writeColumns {
		rows, err := db.QueryContext(ctx, "SELECT "+w.columns+" FROM "+w.table+" WHERE 1 = 0")
		if err != nil {
			errs = append(errs, fmt.Errorf("table %s: %w", w.table, err))
			continue
		}
		rows.Close()
	}
	return errors.Join(errs...)
}

// applySchema creates any missing tables. Existing tables, including ones
// created by older tools with different columns, are left untouched.
func applySchema(ctx context.Context, db *sql.DB, driver string) error {
	if driver == DriverSQLite {
		// go-sqlite3 runs multi-statement scripts in one Exec.
		if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("could not execute schema script: %w", err)
		}
		return nil
	}
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("could not execute schema statement: %w", err)
		}
	}
	utils.LogDebug("Database schema is ready")
	return nil
}
