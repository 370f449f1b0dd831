package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cast"
)

// CategoryRepository stores category names; the name is the key.
type CategoryRepository interface {
	List(ctx context.Context) ([]string, error)
	DeleteAll(ctx context.Context, executor SQLExecutor) error
	Insert(ctx context.Context, executor SQLExecutor, name string) error
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository.
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]string, error) {
	rows, err := queryMaps(ctx, r.db, "categories", "SELECT * FROM categories")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		v := row["name"]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		names = append(names, cast.ToString(v))
	}
	return names, nil
}

func (r *categoryRepository) DeleteAll(ctx context.Context, executor SQLExecutor) error {
	return deleteAll(ctx, executor, "categories")
}

func (r *categoryRepository) Insert(ctx context.Context, executor SQLExecutor, name string) error {
	if _, err := executor.ExecContext(ctx, "INSERT INTO categories (name) VALUES ($1)", name); err != nil {
		return fmt.Errorf("%w: inserting category %q: %v", ErrDatabaseError, name, err)
	}
	return nil
}
