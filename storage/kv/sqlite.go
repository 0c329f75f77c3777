// Package sqlitekv is the persisted local key-value store: session-identity
// fallback and cached tenant/theme preference.
package sqlitekv

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/trezcool/darasa/core"
)

const bootstrapDDL = `
CREATE TABLE IF NOT EXISTS prefs (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

type Store struct {
	db *sqlx.DB
}

var _ core.KeyValueStore = (*Store)(nil)

func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, errors.Wrap(err, "creating data dir")
	}

	dbPath := filepath.Join(dataDir, "darasa.db")
	db, err := sqlx.Connect("sqlite", dbPath+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, errors.Wrap(err, "opening prefs db")
	}
	if _, err := db.Exec(bootstrapDDL); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "bootstrapping prefs db")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Get(key string) (string, bool, error) {
	var value string
	if err := s.db.Get(&value, "SELECT value FROM prefs WHERE key = ?", key); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO prefs (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}
