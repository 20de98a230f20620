package persist

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	username        TEXT PRIMARY KEY,
	credential_hash TEXT NOT NULL,
	num_reviews     INTEGER NOT NULL DEFAULT 0,
	badge           TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS hotels (
	id          INTEGER PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	city        TEXT NOT NULL,
	phone       TEXT NOT NULL DEFAULT '',
	services    TEXT NOT NULL DEFAULT '[]',
	rate        REAL NOT NULL DEFAULT 0,
	cleaning    REAL NOT NULL DEFAULT 0,
	position    REAL NOT NULL DEFAULT 0,
	service     REAL NOT NULL DEFAULT 0,
	quality     REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS reviews (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	username     TEXT NOT NULL,
	hotel_id     INTEGER NOT NULL,
	hotel_name   TEXT NOT NULL,
	global_score REAL NOT NULL,
	created_at   DATETIME NOT NULL,
	cleaning     REAL NOT NULL,
	position     REAL NOT NULL,
	service      REAL NOT NULL,
	quality      REAL NOT NULL
);
`

// DB is the durable snapshot backend. The in-memory stores stay
// authoritative at runtime; the database only absorbs periodic snapshots and
// primes the stores at startup.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database file and applies the schema.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}
