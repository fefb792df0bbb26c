// SPDX-License-Identifier: EPL-2.0

// Package cache keeps analysed tracks in SQLite so reloading an unchanged
// file skips the pipeline.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/ik5/audfeat/analysis"
	"github.com/ik5/audfeat/wire"
)

// ErrCorrupt is returned by Get when a stored entry cannot be decoded.
var ErrCorrupt = errors.New("corrupt cache entry")

// Store is a SQLite-backed analysis.Cache. Entries are kept in the wire
// format, so a cached set has float32 precision.
type Store struct {
	db          *sql.DB
	fingerprint string
}

var _ analysis.Cache = (*Store)(nil)

// Open opens or creates the database at path. fingerprint identifies the
// analysis settings and is mixed into every key, so changing them never
// returns stale sets.
func Open(path, fingerprint string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	s := &Store{db: db, fingerprint: fingerprint}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS tracks (
		id TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL UNIQUE,
		source_path TEXT NOT NULL,
		header BLOB NOT NULL,
		payload BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`)
	return err
}

// Key hashes the file at path together with the store fingerprint.
func (s *Store) Key(_ context.Context, path string) (string, error) {
	return HashFile(path, s.fingerprint)
}

// Get returns the set stored under key.
func (s *Store) Get(ctx context.Context, key string) (*analysis.FeatureSet, bool, error) {
	row := s.db.QueryRowContext(ctx, "SELECT header, payload FROM tracks WHERE content_hash = ?", key)

	var header, payload []byte
	if err := row.Scan(&header, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load cached track: %w", err)
	}

	h, err := wire.DecodeHeader(header)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	p, err := wire.DecodePayload(h, payload)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	set, err := p.FeatureSet()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	return set, true, nil
}

// Put stores set under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key, source string, set *analysis.FeatureSet) error {
	header, err := wire.EncodeHeader(set)
	if err != nil {
		return err
	}
	payload, err := wire.EncodePayload(set)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tracks (id, content_hash, source_path, header, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET
			source_path = excluded.source_path,
			header = excluded.header,
			payload = excluded.payload,
			created_at = CURRENT_TIMESTAMP
	`, uuid.NewString(), key, source, header, payload)
	if err != nil {
		return fmt.Errorf("failed to store track: %w", err)
	}
	return nil
}

// Len returns the number of stored tracks.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tracks").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return n, nil
}

// HashFile returns the hex SHA-256 of fingerprint followed by the file
// content.
func HashFile(path, fingerprint string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	_, _ = io.WriteString(h, fingerprint)
	h.Write([]byte{0})
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
