// Package session persists the auth token and last-known user between
// dashboard invocations. The backing store is a small WAL-mode SQLite
// key-value file, the terminal equivalent of the browser's per-profile
// local storage: exactly two fixed keys, cleared together on logout.
package session

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // register "sqlite" driver with database/sql

	"github.com/sentinellite/sentinel/internal/model"
)

// Fixed storage keys. Token and user are always written and cleared as a
// pair.
const (
	keyToken = "sentinel_token"
	keyUser  = "sentinel_user"
)

// ddl is the schema, kept here so the package is self-contained.
const ddl = `
CREATE TABLE IF NOT EXISTS session (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Store is a sqlite-backed session store. It is safe for concurrent use;
// writes serialise through a single connection.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the session database at path and applies the
// schema. ":memory:" is accepted for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("session: open %q: %w", path, err)
	}

	// One writer at a time; a single pooled connection avoids "database is
	// locked" errors without any further coordination.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session: set WAL mode: %w", err)
	}
	if _, err := db.Exec(ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Save stores the token and serialized user under the two fixed keys,
// replacing any previous session.
func (s *Store) Save(token string, user model.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: marshal user: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("session: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `INSERT INTO session (key, value) VALUES (?, ?)
	                ON CONFLICT (key) DO UPDATE SET value = excluded.value`
	if _, err := tx.Exec(upsert, keyToken, token); err != nil {
		return fmt.Errorf("session: save token: %w", err)
	}
	if _, err := tx.Exec(upsert, keyUser, string(userJSON)); err != nil {
		return fmt.Errorf("session: save user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("session: commit: %w", err)
	}
	return nil
}

// Token returns the stored auth token, or "" when no session exists.
func (s *Store) Token() string {
	var token string
	err := s.db.QueryRow(`SELECT value FROM session WHERE key = ?`, keyToken).Scan(&token)
	if err != nil {
		return ""
	}
	return token
}

// CurrentUser returns the last-known user. It fails soft: a missing or
// malformed record yields (zero, false), never an error into the caller.
func (s *Store) CurrentUser() (model.User, bool) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM session WHERE key = ?`, keyUser).Scan(&raw)
	if err != nil {
		return model.User{}, false
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == "" {
		return model.User{}, false
	}
	return user, true
}

// Clear removes both session keys. Clearing an empty store succeeds.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM session WHERE key IN (?, ?)`, keyToken, keyUser); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// Close closes the underlying database. The store must not be used after
// Close returns.
func (s *Store) Close() error {
	return s.db.Close()
}
