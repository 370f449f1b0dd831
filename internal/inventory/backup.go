package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"mart_inventory/internal/models"
)

// BackupExtension is appended to backup file names.
const BackupExtension = ".json"

// ExportBackup writes the whole snapshot as indented JSON.
func (s *Store) ExportBackup(w io.Writer) error {
	snap := s.Snapshot()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}

// ParseBackup reads a backup document. The only shape requirement is a
// top-level "products" array; other missing keys fall back to the defaults.
func ParseBackup(r io.Reader) (models.Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	var shape map[string]json.RawMessage
	if err := json.Unmarshal(raw, &shape); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	products, ok := shape["products"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(products), []byte("[")) {
		return models.Snapshot{}, fmt.Errorf("%w: missing products array", ErrInvalidBackup)
	}

	snap := models.DefaultSnapshot()
	if err := json.Unmarshal(raw, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	fillEmpty(&snap)
	return snap, nil
}

// RestoreBackup parses r and replaces the whole state with it.
func (s *Store) RestoreBackup(r io.Reader) error {
	snap, err := ParseBackup(r)
	if err != nil {
		return err
	}
	return s.ImportSnapshot(snap)
}
