package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mart_inventory/internal/database"
	"mart_inventory/internal/models"
	"mart_inventory/internal/repositories"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(context.Background(), database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func samplePayload() *SyncPayload {
	settings := models.DefaultSettings()
	settings.MartName = "Corner Mart"
	return &SyncPayload{
		Products: []models.Product{
			{ID: "P1", Name: "Ice Cream", Category: "Frozen", Price: 5, Stock: 7, ReorderLevel: 2, UnitsSold: 3},
		},
		Categories: []string{"Frozen"},
		Settings:   &settings,
		Transactions: []models.Transaction{
			{ID: "T1", CheckoutID: "STOCK-1", ProductID: "P1", ProductName: "Ice Cream", Type: models.TransactionStockAdd,
				Quantity: 10, Price: models.Float64Ptr(0), Total: models.Float64Ptr(50), Timestamp: 1_700_000_000_000},
			{ID: "T2", CheckoutID: "SALE-ABC123", ProductID: "P1", ProductName: "Ice Cream", Type: models.TransactionSale,
				Quantity: 3, Price: models.Float64Ptr(5), Total: models.Float64Ptr(15), Timestamp: 1_700_000_001_000},
		},
	}
}

func TestReplaceAllThenGetAll(t *testing.T) {
	ctx := context.Background()
	svc := NewSyncService(openTestDB(t), 0)

	payload := samplePayload()
	require.NoError(t, svc.ReplaceAll(ctx, payload))

	data, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, payload.Products, data.Products)
	assert.Equal(t, []string{"Frozen"}, data.Categories)
	require.NotNil(t, data.Settings)
	assert.Equal(t, "Corner Mart", data.Settings.MartName)
	require.Len(t, data.Transactions, 2)
	assert.Equal(t, "T2", data.Transactions[0].ID)
	assert.Equal(t, 15.0, *data.Transactions[0].Total)
}

func TestGetAllOnEmptyDatabase(t *testing.T) {
	data, err := NewSyncService(openTestDB(t), 0).GetAll(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data.Settings)
	assert.NotNil(t, data.Products)
	assert.NotNil(t, data.Categories)
	assert.NotNil(t, data.Transactions)
}

func TestReplaceAllKeepsSettingsWhenOmitted(t *testing.T) {
	ctx := context.Background()
	svc := NewSyncService(openTestDB(t), 0)
	require.NoError(t, svc.ReplaceAll(ctx, samplePayload()))

	next := samplePayload()
	next.Settings = nil
	next.Products[0].Stock = 1
	require.NoError(t, svc.ReplaceAll(ctx, next))

	data, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.NotNil(t, data.Settings)
	assert.Equal(t, "Corner Mart", data.Settings.MartName)
	assert.Equal(t, 1, data.Products[0].Stock)
}

func TestReplaceAllRollsBackOnBadRow(t *testing.T) {
	ctx := context.Background()
	svc := NewSyncService(openTestDB(t), 0)
	require.NoError(t, svc.ReplaceAll(ctx, samplePayload()))

	bad := samplePayload()
	bad.Settings.MartName = "Should Not Stick"
	bad.Products = []models.Product{
		{ID: "P9", Name: "Bread", Category: "Bakery", Price: 1, Stock: 5},
		{ID: "P9", Name: "Duplicate", Category: "Bakery", Price: 1, Stock: 5},
	}
	err := svc.ReplaceAll(ctx, bad)
	require.ErrorIs(t, err, repositories.ErrDatabaseError)

	data, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, data.Products, 1)
	assert.Equal(t, "P1", data.Products[0].ID)
	assert.Equal(t, "Corner Mart", data.Settings.MartName)
	assert.Len(t, data.Transactions, 2)
}

func TestReplaceAllRejectsMissingCollections(t *testing.T) {
	svc := NewSyncService(openTestDB(t), 0)
	err := svc.ReplaceAll(context.Background(), &SyncPayload{Categories: []string{"x"}})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestGetAllCapsTransactionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := NewSyncService(openTestDB(t), 3)

	payload := samplePayload()
	payload.Transactions = nil
	for i := 0; i < 5; i++ {
		payload.Transactions = append(payload.Transactions, models.Transaction{
			ID: fmt.Sprintf("T%d", i), ProductID: "P1", ProductName: "Ice Cream", Type: models.TransactionSale,
			Quantity: 1, Price: models.Float64Ptr(5), Total: models.Float64Ptr(5), Timestamp: int64(1_700_000_000_000 + i),
		})
	}
	require.NoError(t, svc.ReplaceAll(ctx, payload))

	data, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, data.Transactions, 3)
	assert.Equal(t, []string{"T4", "T3", "T2"},
		[]string{data.Transactions[0].ID, data.Transactions[1].ID, data.Transactions[2].ID})
}

func TestNilDatabase(t *testing.T) {
	svc := NewSyncService(nil, 0)
	ctx := context.Background()

	assert.Equal(t, HealthStatus{Status: "ok", Database: false}, svc.Health(ctx))
	_, err := svc.GetAll(ctx)
	assert.ErrorIs(t, err, ErrDatabaseUnavailable)
	assert.EqualError(t, err, "database unavailable")
	assert.ErrorIs(t, svc.ReplaceAll(ctx, samplePayload()), ErrDatabaseUnavailable)
}

func TestHealthWithDatabase(t *testing.T) {
	assert.True(t, NewSyncService(openTestDB(t), 0).Health(context.Background()).Database)
}

func TestReplaceAllOverNodeServerTables(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(`
		CREATE TABLE products (id TEXT PRIMARY KEY, name TEXT, category TEXT, price REAL, stock INTEGER,
		  reorderLevel INTEGER, unitsSold INTEGER);
		CREATE TABLE categories (name TEXT PRIMARY KEY);
		CREATE TABLE settings (id INTEGER PRIMARY KEY CHECK (id = 1), martName TEXT, adminName TEXT, address TEXT,
		  contact TEXT, currency TEXT, accessPin TEXT, useExternalDB BOOLEAN, apiEndpoint TEXT);
		CREATE TABLE transactions (id TEXT PRIMARY KEY, checkoutId TEXT, productId TEXT, productName TEXT, type TEXT,
		  quantity INTEGER, price REAL, total REAL, timestamp INTEGER);`)
	require.NoError(t, err)
	require.NoError(t, database.CheckWritable(ctx, db))

	svc := NewSyncService(db, 0)
	payload := samplePayload()
	require.NoError(t, svc.ReplaceAll(ctx, payload))

	data, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, payload.Products, data.Products)
	require.NotNil(t, data.Settings)
	assert.Equal(t, *payload.Settings, *data.Settings)
	assert.Len(t, data.Transactions, 2)
}
