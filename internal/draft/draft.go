// Package draft caches unsaved editor state so it survives an accidental
// reload. The cache is a plain key/value Store injected by the caller.
package draft

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sohanasz/viote/internal/document"
)

// DefaultKey is the key the editor stores its snapshot under.
const DefaultKey = "TEXT_EDITOR_DRAFT"

// Store is a key/value store scoped to one editing session.
type Store interface {
	// Get returns the value stored under key; ok is false when absent.
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	// Clear removes key. Clearing an absent key is not an error.
	Clear(key string) error
}

// Snapshot is the cached editor state.
type Snapshot struct {
	Title   string           `json:"notesTitle"`
	Content document.Content `json:"notes"`
}

// Save encodes snap and stores it under key.
func Save(s Store, key string, snap Snapshot) error {
	if snap.Content == nil {
		snap.Content = document.Content{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("draft: encode: %w", err)
	}
	if err := s.Set(key, data); err != nil {
		return fmt.Errorf("draft: set %s: %w", key, err)
	}
	return nil
}

// Load returns the snapshot stored under key. Missing, unreadable or
// malformed payloads are reported as absent and never as errors.
func Load(s Store, key string, logger *slog.Logger) (Snapshot, bool) {
	data, ok, err := s.Get(key)
	if err != nil {
		logger.Warn("draft: read failed", slog.String("key", key), slog.String("error", err.Error()))
		return Snapshot{}, false
	}
	if !ok || len(data) == 0 {
		return Snapshot{}, false
	}
	snap, err := Decode(data)
	if err != nil {
		logger.Warn("draft: discarding malformed snapshot", slog.String("key", key), slog.String("error", err.Error()))
		return Snapshot{}, false
	}
	return snap, true
}

// Decode parses and validates a stored snapshot.
func Decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("draft: decode: %w", err)
	}
	if err := document.Validate(snap.Content); err != nil {
		return Snapshot{}, fmt.Errorf("draft: invalid content: %w", err)
	}
	return snap, nil
}
