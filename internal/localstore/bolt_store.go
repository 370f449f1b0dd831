// Package localstore keeps the last known snapshot on the local machine.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"mart_inventory/internal/models"
	"mart_inventory/pkg/utils"
)

const (
	// SnapshotKey is the key the whole snapshot is stored under.
	SnapshotKey = "mart_inventory_master_db"
	// PendingKey is set while the stored snapshot has changes the remote has not accepted.
	PendingKey = "mart_inventory_pending_push"
	bucketName = "mart"
)

// ErrLocked is returned when another process holds the data file.
var ErrLocked = errors.New("data file is locked by another process")

// BoltStore persists the snapshot as one JSON blob in a bbolt file.
type BoltStore struct {
	db   *bolt.DB
	path string
}

// Open opens or creates the data file at path.
func Open(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		return nil, fmt.Errorf("opening local store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	return &BoltStore{db: db, path: path}, nil
}

// Path returns the data file location.
func (s *BoltStore) Path() string {
	return s.path
}

// Load returns the stored snapshot merged over the defaults. When nothing was
// stored yet the defaults are written and returned; an unreadable blob is
// logged and the defaults are returned without overwriting it.
func (s *BoltStore) Load() models.Snapshot {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(bucketName)).Get([]byte(SnapshotKey)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		utils.LogError(err, "Local store read failed, using defaults", map[string]interface{}{"path": s.path})
		return models.DefaultSnapshot()
	}

	if raw == nil {
		snap := models.DefaultSnapshot()
		if err := s.Save(snap); err != nil {
			utils.LogError(err, "Failed to seed local store", map[string]interface{}{"path": s.path})
		}
		return snap
	}

	snap, err := decode(raw)
	if err != nil {
		utils.LogError(err, "Local snapshot is corrupt, using defaults", map[string]interface{}{"path": s.path})
		return models.DefaultSnapshot()
	}
	return snap
}

// decode merges a stored blob over the defaults: absent top-level keys keep
// their default and settings are merged field by field.
func decode(raw []byte) (models.Snapshot, error) {
	snap := models.DefaultSnapshot()
	if err := json.Unmarshal(raw, &snap); err != nil {
		return models.Snapshot{}, err
	}
	if snap.Products == nil {
		snap.Products = []models.Product{}
	}
	if snap.Categories == nil {
		snap.Categories = append([]string(nil), models.DefaultCategories...)
	}
	if snap.Transactions == nil {
		snap.Transactions = []models.Transaction{}
	}
	return snap, nil
}

// Save replaces the stored snapshot.
func (s *BoltStore) Save(snap models.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(SnapshotKey), raw)
	})
}

// Pending reports whether the stored snapshot still has to be pushed.
func (s *BoltStore) Pending() bool {
	var pending bool
	err := s.db.View(func(tx *bolt.Tx) error {
		pending = tx.Bucket([]byte(bucketName)).Get([]byte(PendingKey)) != nil
		return nil
	})
	if err != nil {
		utils.LogError(err, "Local store read failed", map[string]interface{}{"path": s.path})
	}
	return pending
}

// SetPending marks or clears the unpushed-changes flag.
func (s *BoltStore) SetPending(pending bool) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if pending {
			return b.Put([]byte(PendingKey), []byte{1})
		}
		return b.Delete([]byte(PendingKey))
	})
}

// Clear removes the stored snapshot and the pending flag; the next Load reseeds the defaults.
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if err := b.Delete([]byte(PendingKey)); err != nil {
			return err
		}
		return b.Delete([]byte(SnapshotKey))
	})
}

// Close releases the data file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
