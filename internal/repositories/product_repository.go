package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"mart_inventory/internal/models"
	"mart_inventory/internal/normalize"
)

// ProductRepository defines the product table operations used by bulk sync.
type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	DeleteAll(ctx context.Context, executor SQLExecutor) error
	Insert(ctx context.Context, executor SQLExecutor, product *models.Product) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) List(ctx context.Context) ([]models.Product, error) {
	rows, err := queryMaps(ctx, r.db, "products", "SELECT * FROM products")
	if err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, normalize.Product(row))
	}
	return products, nil
}

func (r *productRepository) DeleteAll(ctx context.Context, executor SQLExecutor) error {
	return deleteAll(ctx, executor, "products")
}

func (r *productRepository) Insert(ctx context.Context, executor SQLExecutor, p *models.Product) error {
	query := `INSERT INTO products (id, name, category, price, stock, reorderLevel, unitsSold)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := executor.ExecContext(ctx, query, p.ID, p.Name, p.Category, p.Price, p.Stock, p.ReorderLevel, p.UnitsSold)
	if err != nil {
		return fmt.Errorf("%w: inserting product %q: %v", ErrDatabaseError, p.ID, err)
	}
	return nil
}
