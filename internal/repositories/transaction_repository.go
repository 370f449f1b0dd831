package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"mart_inventory/internal/models"
	"mart_inventory/internal/normalize"
)

// TransactionRepository reads and rewrites the transaction log.
type TransactionRepository interface {
	// ListRecent returns at most limit transactions, newest timestamp first.
	ListRecent(ctx context.Context, limit int) ([]models.Transaction, error)
	DeleteAll(ctx context.Context, executor SQLExecutor) error
	Insert(ctx context.Context, executor SQLExecutor, txn *models.Transaction) error
}

type transactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new instance of TransactionRepository.
func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) ListRecent(ctx context.Context, limit int) ([]models.Transaction, error) {
	rows, err := queryMaps(ctx, r.db, "transactions",
		"SELECT * FROM transactions ORDER BY timestamp DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	txns := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, normalize.Transaction(row))
	}
	return txns, nil
}

func (r *transactionRepository) DeleteAll(ctx context.Context, executor SQLExecutor) error {
	return deleteAll(ctx, executor, "transactions")
}

func (r *transactionRepository) Insert(ctx context.Context, executor SQLExecutor, t *models.Transaction) error {
	query := `INSERT INTO transactions
	          (id, checkoutId, productId, productName, type, quantity, price, total, timestamp)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := executor.ExecContext(ctx, query,
		t.ID, t.CheckoutID, t.ProductID, t.ProductName, string(t.Type), t.Quantity, t.Price, t.Total, t.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("%w: inserting transaction %q: %v", ErrDatabaseError, t.ID, err)
	}
	return nil
}
