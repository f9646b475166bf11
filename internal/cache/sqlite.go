package cache

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
    key        TEXT PRIMARY KEY,
    value      BLOB NOT NULL,
    written_at INTEGER NOT NULL
);`

// SQLiteStore persists cache entries in an embedded sqlite database so the
// local-first view survives process restarts. All errors are logged and
// swallowed per the Store contract.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the cache database at path.
// Use ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Serialized access keeps per-key read-modify-write atomic.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(cacheSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// DB exposes the underlying handle so the sync-retry queue can share one file.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) Get(key string) ([]byte, bool) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM cache_entries WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: read failed, treating as miss")
		return nil, false
	}
	return value, true
}

func (s *SQLiteStore) Set(key string, value []byte) {
	_, err := s.db.Exec(
		`INSERT INTO cache_entries (key, value, written_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, written_at = excluded.written_at`,
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: write failed, value dropped locally")
	}
}

func (s *SQLiteStore) Delete(key string) {
	if _, err := s.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: delete failed")
	}
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
