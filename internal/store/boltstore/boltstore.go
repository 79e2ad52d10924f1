// Package boltstore persists the state snapshot in a BoltDB (bbolt)
// database. Each collection is a JSON value under a fixed key, and
// every save rewrites all of them in one update transaction.
package boltstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fedcase/internal/cases"
	"fedcase/internal/metrics"

	bolt "go.etcd.io/bbolt"
)

const backend = "bolt"

// bucketState holds the five collection snapshots.
var bucketState = []byte("state")

// Collection keys within the state bucket.
var (
	keyUsers     = []byte("users")
	keySudoUsers = []byte("sudo_users")
	keyBlacklist = []byte("blacklist")
	keyReports   = []byte("reports")
	keyAppeals   = []byte("appeals")
)

// Store wraps a BoltDB database.
type Store struct {
	db   *bolt.DB
	path string
}

// Options configures the BoltDB store.
type Options struct {
	// Path to the database file. Parent directories will be created
	// if needed.
	Path string

	// Timeout for obtaining a file lock on the database.
	// If zero, a default of 5 seconds is used.
	Timeout time.Duration

	// FileMode for creating the database file.
	// If zero, 0600 is used.
	FileMode os.FileMode
}

// Open creates or opens a BoltDB database at the specified path and
// ensures the state bucket exists.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		opts.Path = "fedcase.db"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.FileMode == 0 {
		opts.FileMode = 0600
	}

	dir := filepath.Dir(opts.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := bolt.Open(opts.Path, opts.FileMode, &bolt.Options{
		Timeout: opts.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketState)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create state bucket: %w", err)
	}

	return &Store{db: db, path: opts.Path}, nil
}

// Load reads the full state. Missing keys yield empty collections; a
// value that cannot be decoded yields a CorruptError.
func (s *Store) Load() (cases.State, error) {
	state := cases.EmptyState()

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketState)
		if bucket == nil {
			return nil
		}

		entries := []struct {
			key []byte
			dst interface{}
		}{
			{keyUsers, &state.Users},
			{keySudoUsers, &state.SudoUsers},
			{keyBlacklist, &state.Blacklist},
			{keyReports, &state.Reports},
			{keyAppeals, &state.Appeals},
		}
		for _, e := range entries {
			data := bucket.Get(e.key)
			if data == nil {
				continue
			}
			if err := json.Unmarshal(data, e.dst); err != nil {
				return fmt.Errorf("failed to decode %s: %w", e.key, err)
			}
		}
		return nil
	})
	if err != nil {
		return cases.State{}, &cases.CorruptError{Path: s.path, Err: err}
	}

	state.Normalize()
	return state, nil
}

// Save rewrites every collection in a single transaction.
func (s *Store) Save(state cases.State) error {
	state.Normalize()

	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketState)
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", bucketState)
		}

		entries := []struct {
			key []byte
			src interface{}
		}{
			{keyUsers, state.Users},
			{keySudoUsers, state.SudoUsers},
			{keyBlacklist, state.Blacklist},
			{keyReports, state.Reports},
			{keyAppeals, state.Appeals},
		}
		for _, e := range entries {
			data, err := json.Marshal(e.src)
			if err != nil {
				return fmt.Errorf("failed to marshal %s: %w", e.key, err)
			}
			if err := bucket.Put(e.key, data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		metrics.StoreSaveErrorsTotal.WithLabelValues(backend).Inc()
		return &cases.PersistError{Op: "write snapshot", Err: err}
	}

	metrics.StoreSavesTotal.WithLabelValues(backend).Inc()
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ensure Store implements the interface at compile time.
var _ cases.Store = (*Store)(nil)
