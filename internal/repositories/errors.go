package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError is returned for unexpected database errors.
	// It wraps the driver error text.
	ErrDatabaseError = errors.New("database error")
)

// SQLExecutor is satisfied by *sql.DB and *sql.Tx, so the same repository
// method can run inside or outside a transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// scanRows reads every row into a column-name keyed map. Reads go through
// this instead of fixed Scan targets so tables created by older tools, with
// other column names, still load.
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// queryMaps runs query and returns the scanned rows.
func queryMaps(ctx context.Context, executor SQLExecutor, what, query string, args ...interface{}) ([]map[string]any, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying %s: %v", ErrDatabaseError, what, err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: scanning %s: %v", ErrDatabaseError, what, err)
	}
	return out, nil
}

func deleteAll(ctx context.Context, executor SQLExecutor, table string) error {
	if _, err := executor.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("%w: clearing %s: %v", ErrDatabaseError, table, err)
	}
	return nil
}
