package diagram

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const cacheSchemaSQL = `
CREATE TABLE IF NOT EXISTS diagrams (
	hash       TEXT PRIMARY KEY,
	language   TEXT NOT NULL DEFAULT '',
	svg        BLOB NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Cache stores rendered diagrams by content hash so unchanged diagrams are
// not requested again on later runs.
type Cache interface {
	Get(hash string) ([]byte, bool, error)
	Put(hash, language string, svg []byte) error
	Close() error
}

// DB is a Cache backed by SQLite.
type DB struct {
	conn *sql.DB
}

// Verify *DB satisfies Cache at compile time.
var _ Cache = (*DB)(nil)

// OpenCache opens (or creates) the SQLite cache and applies the schema.
func OpenCache(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("diagram: open cache: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("diagram: ping cache: %w", err)
	}
	if _, err := conn.Exec(cacheSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("diagram: apply cache schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Get returns the cached rendering for hash.
func (db *DB) Get(hash string) ([]byte, bool, error) {
	var svg []byte
	err := db.conn.QueryRow(`SELECT svg FROM diagrams WHERE hash = ?`, hash).Scan(&svg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("diagram: cache get: %w", err)
	}
	return svg, true, nil
}

// Put stores a rendering, replacing any previous one for hash.
func (db *DB) Put(hash, language string, svg []byte) error {
	_, err := db.conn.Exec(`
		INSERT INTO diagrams (hash, language, svg, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			language   = excluded.language,
			svg        = excluded.svg,
			created_at = excluded.created_at
	`, hash, language, svg, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("diagram: cache put: %w", err)
	}
	return nil
}

// Len returns the number of cached renderings.
func (db *DB) Len() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM diagrams`).Scan(&n); err != nil {
		return 0, fmt.Errorf("diagram: cache count: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
