package localstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"mart_inventory/internal/models"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "mart.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func putRaw(t *testing.T, s *BoltStore, raw string) {
	t.Helper()
	require.NoError(t, s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(SnapshotKey), []byte(raw))
	}))
}

func TestLoadSeedsDefaults(t *testing.T) {
	s := openTestStore(t)

	snap := s.Load()
	assert.Equal(t, models.DefaultSnapshot(), snap)

	var stored []byte
	require.NoError(t, s.db.View(func(tx *bolt.Tx) error {
		stored = append([]byte(nil), tx.Bucket([]byte(bucketName)).Get([]byte(SnapshotKey))...)
		return nil
	}))
	assert.NotEmpty(t, stored)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)

	snap := models.DefaultSnapshot()
	snap.Categories = append(snap.Categories, "Frozen")
	snap.Products = []models.Product{{ID: "P1", Name: "Ice Cream", Category: "Frozen", Price: 5, Stock: 7, ReorderLevel: 2, UnitsSold: 3}}
	snap.Settings.AccessPIN = "1234"
	snap.Transactions = []models.Transaction{
		{ID: "T1", CheckoutID: "STOCK-1", ProductID: "P1", ProductName: "Ice Cream", Type: models.TransactionStockAdd,
			Quantity: 10, Total: models.Float64Ptr(50), Timestamp: 1_700_000_000_000},
	}
	require.NoError(t, s.Save(snap))

	assert.Equal(t, snap, s.Load())
}

func TestLoadCorruptReturnsDefaults(t *testing.T) {
	s := openTestStore(t)
	putRaw(t, s, `{"products": [`)

	assert.Equal(t, models.DefaultSnapshot(), s.Load())
}

func TestLoadMergesMissingKeysAndSettings(t *testing.T) {
	s := openTestStore(t)
	putRaw(t, s, `{"products":[{"id":"P1","name":"Tea","category":"Beverages","price":1,"stock":4,"reorderLevel":1,"unitsSold":0}],
	  "settings":{"martName":"Corner Mart","accessPin":"9999"}}`)

	snap := s.Load()
	require.Len(t, snap.Products, 1)
	assert.Equal(t, models.DefaultCategories, snap.Categories)
	assert.NotNil(t, snap.Transactions)
	assert.Equal(t, "Corner Mart", snap.Settings.MartName)
	assert.Equal(t, "9999", snap.Settings.AccessPIN)
	assert.Equal(t, "Rs.", snap.Settings.Currency)
	assert.Equal(t, "Admin User", snap.Settings.AdminName)
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	snap := models.DefaultSnapshot()
	snap.Settings.MartName = "Corner Mart"
	require.NoError(t, s.Save(snap))
	require.NoError(t, s.SetPending(true))
	require.NoError(t, s.Clear())

	assert.Equal(t, "MART INVENTORY", s.Load().Settings.MartName)
	assert.False(t, s.Pending())
}

func TestPendingFlagSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mart.db")
	s, err := Open(path)
	require.NoError(t, err)
	assert.False(t, s.Pending())
	require.NoError(t, s.SetPending(true))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	assert.True(t, s.Pending())
	require.NoError(t, s.SetPending(false))
	assert.False(t, s.Pending())
}

func TestOpenLockedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mart.db")
	first, err := Open(path)
	require.NoError(t, err)
	defer first.Close()

	_, err = Open(path)
	assert.ErrorIs(t, err, ErrLocked)
}
