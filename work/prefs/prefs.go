package prefs

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Preference keys and their built-in defaults. The base URL points at the
// full upcoming-sports listing; the stream proxy default is a local Ace
// Stream engine endpoint.
const (
	KeyBaseURL     = "base_url"
	KeyStreamProxy = "stream_proxy"

	DefaultBaseURL     = "https://livetv.sx/enx/allupcomingsports/1/"
	DefaultStreamProxy = "http://127.0.0.1:6878"
)

// Store is a SQLite-backed key-value preference store. It holds the few
// user-editable settings that survive restarts: the listing base URL and
// the stream proxy host.
type Store struct {
	db *sql.DB
}

// Open creates or opens the preference database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create preference directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open preference store: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS preferences (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create preferences table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Get returns the stored value for key, or def when unset.
func (s *Store) Get(key, def string) string {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return def
	}
	return value
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to store preference %s: %w", key, err)
	}
	return nil
}

// Reset removes key, restoring its built-in default on the next read.
func (s *Store) Reset(key string) error {
	_, err := s.db.Exec(`DELETE FROM preferences WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to reset preference %s: %w", key, err)
	}
	return nil
}

// BaseURL returns the configured listing URL.
func (s *Store) BaseURL() string { return s.Get(KeyBaseURL, DefaultBaseURL) }

// SetBaseURL stores a new listing URL.
func (s *Store) SetBaseURL(url string) error { return s.Set(KeyBaseURL, url) }

// StreamProxy returns the configured stream proxy host.
func (s *Store) StreamProxy() string { return s.Get(KeyStreamProxy, DefaultStreamProxy) }

// SetStreamProxy stores a new stream proxy host.
func (s *Store) SetStreamProxy(host string) error { return s.Set(KeyStreamProxy, host) }
