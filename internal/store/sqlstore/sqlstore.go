// Package sqlstore persists the state snapshot in SQLite. Save is one
// transaction that truncates every table and reinserts the snapshot,
// keeping the wholesale-rewrite contract of the other backends.
package sqlstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"fedcase/internal/cases"
	"fedcase/internal/metrics"

	_ "modernc.org/sqlite"
)

const backend = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS roster (
	pos     INTEGER NOT NULL,
	set_name TEXT    NOT NULL,
	user_id INTEGER NOT NULL,
	PRIMARY KEY (set_name, pos)
);

CREATE TABLE IF NOT EXISTS case_records (
	pos      INTEGER NOT NULL,
	kind     TEXT    NOT NULL,
	id       TEXT    NOT NULL,
	subject  TEXT    NOT NULL,
	reason   TEXT    NOT NULL,
	actor    INTEGER NOT NULL,
	status   TEXT    NOT NULL,
	evidence TEXT    NOT NULL,
	PRIMARY KEY (kind, pos)
);
`

// Roster set names.
const (
	setUsers     = "users"
	setSudoUsers = "sudo_users"
	setBlacklist = "blacklist"
)

// Store wraps a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens a SQLite database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The snapshot contract is single-writer; one connection avoids
	// SQLITE_BUSY under the wholesale rewrite.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Load reads the full state in insertion order.
func (s *Store) Load() (cases.State, error) {
	state := cases.EmptyState()

	for _, set := range []struct {
		name string
		dst  *[]int64
	}{
		{setUsers, &state.Users},
		{setSudoUsers, &state.SudoUsers},
		{setBlacklist, &state.Blacklist},
	} {
		ids, err := s.loadRoster(set.name)
		if err != nil {
			return cases.State{}, &cases.CorruptError{Path: s.path, Err: err}
		}
		*set.dst = ids
	}

	for _, col := range []struct {
		kind cases.Kind
		dst  *[]cases.Case
	}{
		{cases.KindReport, &state.Reports},
		{cases.KindAppeal, &state.Appeals},
	} {
		records, err := s.loadCases(col.kind)
		if err != nil {
			return cases.State{}, &cases.CorruptError{Path: s.path, Err: err}
		}
		*col.dst = records
	}

	state.Normalize()
	return state, nil
}

func (s *Store) loadRoster(name string) ([]int64, error) {
	rows, err := s.db.Query(`SELECT user_id FROM roster WHERE set_name = ? ORDER BY pos`, name)
	if err != nil {
		return nil, fmt.Errorf("query roster %s: %w", name, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan roster %s: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) loadCases(kind cases.Kind) ([]cases.Case, error) {
	rows, err := s.db.Query(`
		SELECT id, subject, reason, actor, status, evidence
		FROM case_records WHERE kind = ? ORDER BY pos
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query %s cases: %w", kind, err)
	}
	defer rows.Close()

	records := []cases.Case{}
	for rows.Next() {
		var (
			c            cases.Case
			evidenceJSON string
		)
		if err := rows.Scan(&c.ID, &c.SubjectID, &c.Reason, &c.ActorID, &c.Status, &evidenceJSON); err != nil {
			return nil, fmt.Errorf("scan %s case: %w", kind, err)
		}
		c.Kind = kind
		if err := json.Unmarshal([]byte(evidenceJSON), &c.Evidence); err != nil {
			return nil, fmt.Errorf("decode evidence for %s %s: %w", kind, c.ID, err)
		}
		records = append(records, c)
	}
	return records, rows.Err()
}

// Save replaces the whole snapshot in one transaction.
func (s *Store) Save(state cases.State) error {
	state.Normalize()

	if err := s.save(state); err != nil {
		metrics.StoreSaveErrorsTotal.WithLabelValues(backend).Inc()
		return &cases.PersistError{Op: "write snapshot", Err: err}
	}

	metrics.StoreSavesTotal.WithLabelValues(backend).Inc()
	return nil
}

func (s *Store) save(state cases.State) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM roster`); err != nil {
		return fmt.Errorf("clear roster: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM case_records`); err != nil {
		return fmt.Errorf("clear cases: %w", err)
	}

	for _, set := range []struct {
		name string
		ids  []int64
	}{
		{setUsers, state.Users},
		{setSudoUsers, state.SudoUsers},
		{setBlacklist, state.Blacklist},
	} {
		for pos, id := range set.ids {
			if _, err := tx.Exec(
				`INSERT INTO roster (pos, set_name, user_id) VALUES (?, ?, ?)`,
				pos, set.name, id,
			); err != nil {
				return fmt.Errorf("insert roster %s: %w", set.name, err)
			}
		}
	}

	for _, col := range []struct {
		kind    cases.Kind
		records []cases.Case
	}{
		{cases.KindReport, state.Reports},
		{cases.KindAppeal, state.Appeals},
	} {
		for pos, c := range col.records {
			evidenceJSON, err := json.Marshal(c.Evidence)
			if err != nil {
				return fmt.Errorf("encode evidence for %s %s: %w", col.kind, c.ID, err)
			}
			if _, err := tx.Exec(`
				INSERT INTO case_records (pos, kind, id, subject, reason, actor, status, evidence)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, pos, string(col.kind), c.ID, c.SubjectID, c.Reason, c.ActorID, string(c.Status), string(evidenceJSON)); err != nil {
				return fmt.Errorf("insert %s case %s: %w", col.kind, c.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
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
