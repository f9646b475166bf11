package syncq

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

const queueSchema = `
CREATE TABLE IF NOT EXISTS pending_writes (
    id         TEXT PRIMARY KEY,
    key        TEXT NOT NULL,
    entity     TEXT NOT NULL,
    entity_id  TEXT NOT NULL,
    op         TEXT NOT NULL,
    payload    BLOB,
    attempts   INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    seq        INTEGER
);
CREATE INDEX IF NOT EXISTS idx_pending_writes_seq ON pending_writes (seq);`

// SQLiteQueue persists pending writes so queued replays survive restarts.
// It can share the cache database file or own a separate one.
type SQLiteQueue struct {
	db  *sql.DB
	own bool
}

// OpenSQLite opens (creating if needed) a queue database at path.
func OpenSQLite(path string) (*SQLiteQueue, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(queueSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteQueue{db: db, own: true}, nil
}

// NewSQLiteQueue wraps an existing database handle (e.g. the cache's).
func NewSQLiteQueue(db *sql.DB) (*SQLiteQueue, error) {
	if _, err := db.Exec(queueSchema); err != nil {
		return nil, err
	}
	return &SQLiteQueue{db: db}, nil
}

func (q *SQLiteQueue) Append(w PendingWrite) error {
	createdAt := w.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := q.db.Exec(
		`INSERT INTO pending_writes (id, key, entity, entity_id, op, payload, attempts, created_at, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM pending_writes))`,
		w.ID, w.Key, w.Entity, w.EntityID, w.Op, []byte(w.Payload), w.Attempts, createdAt.UnixMilli(),
	)
	return err
}

func (q *SQLiteQueue) Drain(ctx context.Context, replay ReplayFunc) (int, error) {
	replayed := 0
	for {
		if err := ctx.Err(); err != nil {
			return replayed, err
		}

		w, seq, ok, err := q.head()
		if err != nil {
			return replayed, err
		}
		if !ok {
			return replayed, nil
		}

		if err := replay(ctx, w); err != nil {
			_, _ = q.db.Exec(`UPDATE pending_writes SET attempts = attempts + 1 WHERE seq = ?`, seq)
			return replayed, err
		}
		// Remove only after the replay succeeded.
		if _, err := q.db.Exec(`DELETE FROM pending_writes WHERE seq = ?`, seq); err != nil {
			return replayed, err
		}
		replayed++
	}
}

func (q *SQLiteQueue) head() (PendingWrite, int64, bool, error) {
	var (
		w         PendingWrite
		seq       int64
		createdAt int64
		payload   []byte
	)
	err := q.db.QueryRow(
		`SELECT id, key, entity, entity_id, op, payload, attempts, created_at, seq
		 FROM pending_writes ORDER BY seq LIMIT 1`,
	).Scan(&w.ID, &w.Key, &w.Entity, &w.EntityID, &w.Op, &payload, &w.Attempts, &createdAt, &seq)
	if err == sql.ErrNoRows {
		return w, 0, false, nil
	}
	if err != nil {
		return w, 0, false, err
	}
	w.Payload = payload
	w.CreatedAt = time.UnixMilli(createdAt)
	return w, seq, true, nil
}

func (q *SQLiteQueue) Len() int {
	var n int
	if err := q.db.QueryRow(`SELECT COUNT(*) FROM pending_writes`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Close releases the database handle when this queue owns it.
func (q *SQLiteQueue) Close() error {
	if q.own {
		return q.db.Close()
	}
	return nil
}
