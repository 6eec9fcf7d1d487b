// Package sqlite persists selections in a local SQLite file, surviving process restarts
// the way browser local storage survives reloads.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/Apurer/vaccine-portal/internal/domains/selection/domain"
	"github.com/Apurer/vaccine-portal/internal/domains/selection/ports"
)

// DefaultPath is used when no file is configured.
const DefaultPath = "portal-selection.db"

var _ ports.Store = (*Store)(nil)

// Store keeps one row per (profile, key) with the history encoded as a JSON array.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database file at path.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single writer keeps SQLite from returning SQLITE_BUSY under concurrent Set calls
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS selections (
		profile TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		recent BLOB NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (profile, key)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create selections table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context, profile string, key domain.Key) (*domain.Record, error) {
	var (
		value, updated string
		recent         []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, recent, updated_at FROM selections WHERE profile = ? AND key = ?`,
		profile, string(key),
	).Scan(&value, &recent, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select selection: %w", err)
	}
	rec := &domain.Record{Profile: profile, Key: key, Value: value}
	if err := json.Unmarshal(recent, &rec.Recent); err != nil {
		return nil, fmt.Errorf("decode recent: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("decode updated_at: %w", err)
	}
	return rec, nil
}

func (s *Store) Save(ctx context.Context, record domain.Record) error {
	recent := record.Recent
	if recent == nil {
		recent = []string{}
	}
	data, err := json.Marshal(recent)
	if err != nil {
		return fmt.Errorf("encode recent: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO selections(profile, key, value, recent, updated_at)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(profile, key) DO UPDATE SET
			value = excluded.value,
			recent = excluded.recent,
			updated_at = excluded.updated_at`,
		record.Profile, string(record.Key), record.Value, data, record.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert selection: %w", err)
	}
	return nil
}

func (s *Store) Reset(ctx context.Context, profile string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM selections WHERE profile = ?`, profile); err != nil {
		return fmt.Errorf("delete selections: %w", err)
	}
	return nil
}
