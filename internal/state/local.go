package state

import (
	"database/sql"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoState means the local store holds no snapshot yet.
var ErrNoState = errors.New("no saved state")

// LocalStore keeps the most recent dashboard state snapshot in a small
// sqlite file. It is the synchronous always-available leg of persistence;
// the remote store is the debounced one.
type LocalStore struct {
	db *sql.DB
}

func OpenLocal(path string) (*LocalStore, error) {
	if path == "" {
		return nil, errors.New("state db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &LocalStore{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *LocalStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *LocalStore) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS dashboard_state (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	payload TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`
	_, err := s.db.Exec(ddl)
	return err
}

// Load returns the stored snapshot, or ErrNoState when nothing has been
// saved yet.
func (s *LocalStore) Load() ([]byte, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM dashboard_state WHERE id = 1;`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

// Save replaces the stored snapshot.
func (s *LocalStore) Save(payload []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO dashboard_state (id, payload, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at;`,
		string(payload), now)
	return err
}

// Clear drops the stored snapshot.
func (s *LocalStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM dashboard_state WHERE id = 1;`)
	return err
}

// modernc.org/sqlite uses driver name "sqlite" and prefers a file: DSN.
// mode=rwc creates the database file if it doesn't exist.
func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
