package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"mart_inventory/internal/models"
	"mart_inventory/internal/normalize"
)

// SettingRepository manages the single settings row (id = 1).
type SettingRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	Replace(ctx context.Context, executor SQLExecutor, settings *models.Settings) error
}

type settingRepository struct {
	db *sql.DB
}

// NewSettingRepository creates a new instance of SettingRepository.
func NewSettingRepository(db *sql.DB) SettingRepository {
	return &settingRepository{db: db}
}

// Get returns ErrNotFound when no settings row exists.
func (r *settingRepository) Get(ctx context.Context) (*models.Settings, error) {
	rows, err := queryMaps(ctx, r.db, "settings", "SELECT * FROM settings WHERE id = 1")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return normalize.Settings(rows[0]), nil
}

func (r *settingRepository) Replace(ctx context.Context, executor SQLExecutor, s *models.Settings) error {
	if err := deleteAll(ctx, executor, "settings"); err != nil {
		return err
	}
	query := `INSERT INTO settings
	          (id, martName, adminName, address, contact, currency, accessPin, useExternalDB, apiEndpoint)
	          VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := executor.ExecContext(ctx, query,
		s.MartName, s.AdminName, s.Address, s.Contact, s.Currency, s.AccessPIN, s.UseExternalDB, s.APIEndpoint,
	)
	if err != nil {
		return fmt.Errorf("%w: inserting settings: %v", ErrDatabaseError, err)
	}
	return nil
}
