package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mart_inventory/internal/models"
	"mart_inventory/internal/repositories"
	"mart_inventory/pkg/utils"
)

// DefaultTransactionReadLimit caps how many log entries a bulk read returns.
const DefaultTransactionReadLimit = 5000

var (
	// ErrDatabaseUnavailable is returned while no database handle is attached.
	ErrDatabaseUnavailable = errors.New("database unavailable")
	// ErrInvalidSnapshot is returned for payloads missing required collections.
	ErrInvalidSnapshot = errors.New("invalid snapshot payload")
)

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status   string `json:"status"`
	Database bool   `json:"database"`
}

// SyncPayload is the body accepted by the bulk write endpoint. Settings is optional;
// when omitted the stored settings row is left untouched.
type SyncPayload struct {
	Products     []models.Product     `json:"products"`
	Categories   []string             `json:"categories"`
	Settings     *models.Settings     `json:"settings"`
	Transactions []models.Transaction `json:"transactions"`
}

// SyncService serves whole-snapshot reads and replacements of the shared store.
type SyncService interface {
	Health(ctx context.Context) HealthStatus
	GetAll(ctx context.Context) (*models.RemoteData, error)
	ReplaceAll(ctx context.Context, payload *SyncPayload) error
}

type syncService struct {
	db           *sql.DB
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	settingRepo  repositories.SettingRepository
	txnRepo      repositories.TransactionRepository
	readLimit    int
}

// NewSyncService creates a new instance of SyncService. db may be nil while the
// database is still coming up; every data call then fails with ErrDatabaseUnavailable.
func NewSyncService(db *sql.DB, readLimit int) SyncService {
	if readLimit <= 0 {
		readLimit = DefaultTransactionReadLimit
	}
	return &syncService{
		db:           db,
		productRepo:  repositories.NewProductRepository(db),
		categoryRepo: repositories.NewCategoryRepository(db),
		settingRepo:  repositories.NewSettingRepository(db),
		txnRepo:      repositories.NewTransactionRepository(db),
		readLimit:    readLimit,
	}
}

func (s *syncService) Health(ctx context.Context) HealthStatus {
	connected := s.db != nil && s.db.PingContext(ctx) == nil
	return HealthStatus{Status: "ok", Database: connected}
}

func (s *syncService) GetAll(ctx context.Context) (*models.RemoteData, error) {
	if s.db == nil {
		return nil, ErrDatabaseUnavailable
	}

	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	transactions, err := s.txnRepo.ListRecent(ctx, s.readLimit)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingRepo.Get(ctx)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	return &models.RemoteData{
		Products:     products,
		Categories:   categories,
		Settings:     settings,
		Transactions: transactions,
	}, nil
}

func (s *syncService) ReplaceAll(ctx context.Context, payload *SyncPayload) error {
	if s.db == nil {
		return ErrDatabaseUnavailable
	}
	if payload == nil || payload.Products == nil || payload.Transactions == nil {
		return fmt.Errorf("%w: products and transactions are required", ErrInvalidSnapshot)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", repositories.ErrDatabaseError, err)
	}
	defer tx.Rollback() // Rollback if not committed

	if err := s.productRepo.DeleteAll(ctx, tx); err != nil {
		return err
	}
	for i := range payload.Products {
		if err := s.productRepo.Insert(ctx, tx, &payload.Products[i]); err != nil {
			return err
		}
	}

	if err := s.categoryRepo.DeleteAll(ctx, tx); err != nil {
		return err
	}
	for _, name := range payload.Categories {
		if err := s.categoryRepo.Insert(ctx, tx, name); err != nil {
			return err
		}
	}

	if payload.Settings != nil {
		if err := s.settingRepo.Replace(ctx, tx, payload.Settings); err != nil {
			return err
		}
	}

	if err := s.txnRepo.DeleteAll(ctx, tx); err != nil {
		return err
	}
	for i := range payload.Transactions {
		if err := s.txnRepo.Insert(ctx, tx, &payload.Transactions[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit sync: %v", repositories.ErrDatabaseError, err)
	}

	utils.LogInfo("Snapshot replaced", map[string]interface{}{
		"products":     len(payload.Products),
		"categories":   len(payload.Categories),
		"transactions": len(payload.Transactions),
		"settings":     payload.Settings != nil,
	})
	return nil
}
