// Package jsonstore persists the full state as a single JSON document.
// Every save rewrites the whole file via a temp-file-then-rename so a
// crash mid-write never leaves the store unreadable.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"fedcase/internal/cases"
	"fedcase/internal/metrics"
)

const backend = "json"

// Store is a file-backed JSON snapshot store.
type Store struct {
	path string
}

// Open prepares a JSON store at path, creating parent directories if
// needed. The file itself is created on the first save.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	return &Store{path: path}, nil
}

// Load reads the full state. A missing file yields an empty state; a
// file that exists but cannot be decoded yields a CorruptError.
func (s *Store) Load() (cases.State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cases.EmptyState(), nil
		}
		return cases.State{}, &cases.CorruptError{Path: s.path, Err: err}
	}

	var state cases.State
	if err := json.Unmarshal(data, &state); err != nil {
		return cases.State{}, &cases.CorruptError{Path: s.path, Err: err}
	}
	state.Normalize()
	return state, nil
}

// Save writes the full state atomically.
func (s *Store) Save(state cases.State) error {
	state.Normalize()

	data, err := json.MarshalIndent(state, "", "    ")
	if err != nil {
		metrics.StoreSaveErrorsTotal.WithLabelValues(backend).Inc()
		return &cases.PersistError{Op: "encode state", Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".fedcase-*.json")
	if err != nil {
		metrics.StoreSaveErrorsTotal.WithLabelValues(backend).Inc()
		return &cases.PersistError{Op: "create temp file", Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		metrics.StoreSaveErrorsTotal.WithLabelValues(backend).Inc()
		return &cases.PersistError{Op: "write state", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		metrics.StoreSaveErrorsTotal.WithLabelValues(backend).Inc()
		return &cases.PersistError{Op: "sync state", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		metrics.StoreSaveErrorsTotal.WithLabelValues(backend).Inc()
		return &cases.PersistError{Op: "close temp file", Err: err}
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		metrics.StoreSaveErrorsTotal.WithLabelValues(backend).Inc()
		return &cases.PersistError{Op: "replace state file", Err: err}
	}

	metrics.StoreSavesTotal.WithLabelValues(backend).Inc()
	return nil
}

// Close is a no-op; the store holds no open handles between calls.
func (s *Store) Close() error { return nil }

// Ensure Store implements the interface at compile time.
var _ cases.Store = (*Store)(nil)
