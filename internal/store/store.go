// Package store implements the transactional bookmark store: a SQLite
// record table with a unique URL constraint, a full-text search mirror
// kept in lockstep with it, and an append-only undo log. Every mutation
// runs inside one transaction touching all three, so the table, the
// index and the log can never disagree at a commit boundary.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/mkovac/linkstash/internal/apperr"
)

// Store defines the public surface of the bookmark store. Consumers
// should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Store interface {
	AddRec(url, title, tags, desc string) (int64, error)
	GetRecByID(id int64) (*Bookmark, error)
	GetRecAll() ([]Bookmark, error)
	UpdateRec(id int64, fields UpdateFields) error
	UpdateRecBatch(recs []Bookmark, fields UpdateFields) (int, error)
	UpdateRecBatchTags(recs []Bookmark, fields UpdateFields) (int, error)
	DeleteRec(id int64) error
	DeleteRecBatch(ids []int64) (int, error)
	Search(keywords []string, matchAny, deep, regex bool) ([]Bookmark, error)
	SearchTags(tags []string) ([]Bookmark, error)
	UndoLast() (*UndoResult, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// DB wraps a sql.DB with bookmark store operations. One DB instance is
// the single logical owner of the underlying file; the connection pool
// is capped at one connection so every transaction sees the same handle.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(path string) (*DB, error) {
	return open(path + "?_journal_mode=WAL&_busy_timeout=5000")
}

// OpenInMemory opens an ephemeral in-memory store, used by tests and
// throwaway sessions.
func OpenInMemory() (*DB, error) {
	return open(":memory:")
}

func open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if err := applySchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// mapErr translates driver-level constraint violations into the
// store's error taxonomy.
func mapErr(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return apperr.ErrDuplicateURL
	}
	return err
}
