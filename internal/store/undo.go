package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Undo log operations. An entry's snapshot columns hold the
// pre-operation row for UPDATE and DELETE; an ADD entry carries only
// the id. Entries sharing a batch_id are reverted together.
const (
	opAdd    = "ADD"
	opUpdate = "UPDATE"
	opDelete = "DELETE"
)

type undoEntry struct {
	id         int64
	operation  string
	bookmarkID int64
	batchID    sql.NullString
	snapshot   Bookmark
}

// appendUndo writes one log entry inside the mutation's transaction.
// snap is nil for ADD; batchID is empty for standalone operations.
func appendUndo(tx *sql.Tx, op string, bookmarkID int64, snap *Bookmark, batchID string) error {
	var batch any
	if batchID != "" {
		batch = batchID
	}

	var err error
	if snap == nil {
		_, err = tx.Exec(`
			INSERT INTO undo_log (timestamp, operation, bookmark_id, batch_id)
			VALUES (?, ?, ?, ?)
		`, time.Now().Unix(), op, bookmarkID, batch)
	} else {
		_, err = tx.Exec(`
			INSERT INTO undo_log (timestamp, operation, bookmark_id, batch_id, url, title, tags, desc, flags)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, time.Now().Unix(), op, bookmarkID, batch, snap.URL, snap.Title, snap.Tags, snap.Desc, snap.Flags)
	}
	if err != nil {
		return fmt.Errorf("store: append undo: %w", err)
	}
	return nil
}

// UndoLast reverts the most recent logical operation. A standalone
// entry is reverted alone; an entry carrying a batch_id pulls in every
// entry of that batch, oldest first, so chained changes to the same row
// unwind in order. Consumed entries are deleted. Returns nil when the
// log is empty.
func (db *DB) UndoLast() (*UndoResult, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	last, err := lastEntry(tx)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, nil
	}

	entries := []undoEntry{*last}
	if last.batchID.Valid {
		entries, err = batchEntries(tx, last.batchID.String)
		if err != nil {
			return nil, err
		}
	}

	for _, e := range entries {
		if err := revertEntry(tx, e); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(`DELETE FROM undo_log WHERE id = ?`, e.id); err != nil {
			return nil, fmt.Errorf("store: consume undo entry %d: %w", e.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit undo: %w", err)
	}
	return &UndoResult{Operation: last.operation, Affected: len(entries)}, nil
}

// revertEntry applies the inverse of one logged operation inside tx,
// keeping the search mirror in step with the record table.
func revertEntry(tx *sql.Tx, e undoEntry) error {
	switch e.operation {
	case opAdd:
		if _, err := tx.Exec(`DELETE FROM bookmarks WHERE id = ?`, e.bookmarkID); err != nil {
			return fmt.Errorf("store: undo add %d: %w", e.bookmarkID, err)
		}
		ftsDelete(tx, e.bookmarkID)
	case opUpdate:
		_, err := tx.Exec(`UPDATE bookmarks SET url = ?, title = ?, tags = ?, desc = ?, flags = ? WHERE id = ?`,
			e.snapshot.URL, e.snapshot.Title, e.snapshot.Tags, e.snapshot.Desc, e.snapshot.Flags, e.bookmarkID)
		if err != nil {
			return fmt.Errorf("store: undo update %d: %w", e.bookmarkID, mapErr(err))
		}
		return ftsUpsert(tx, e.snapshot)
	case opDelete:
		// Restore under the original id, not a freshly allocated one.
		_, err := tx.Exec(`INSERT INTO bookmarks (id, url, title, tags, desc, flags) VALUES (?, ?, ?, ?, ?, ?)`,
			e.bookmarkID, e.snapshot.URL, e.snapshot.Title, e.snapshot.Tags, e.snapshot.Desc, e.snapshot.Flags)
		if err != nil {
			return fmt.Errorf("store: undo delete %d: %w", e.bookmarkID, mapErr(err))
		}
		return ftsUpsert(tx, e.snapshot)
	}
	return nil
}

func lastEntry(tx *sql.Tx) (*undoEntry, error) {
	e, err := scanEntry(tx.QueryRow(`
		SELECT id, operation, bookmark_id, batch_id, url, title, tags, desc, flags
		FROM undo_log ORDER BY id DESC LIMIT 1
	`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read undo log: %w", err)
	}
	return &e, nil
}

func batchEntries(tx *sql.Tx, batchID string) ([]undoEntry, error) {
	rows, err := tx.Query(`
		SELECT id, operation, bookmark_id, batch_id, url, title, tags, desc, flags
		FROM undo_log WHERE batch_id = ? ORDER BY id ASC
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("store: read undo batch: %w", err)
	}
	defer rows.Close()

	var out []undoEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (undoEntry, error) {
	var (
		e                      undoEntry
		url, title, tags, desc sql.NullString
		flags                  sql.NullInt64
	)
	if err := row.Scan(&e.id, &e.operation, &e.bookmarkID, &e.batchID, &url, &title, &tags, &desc, &flags); err != nil {
		return undoEntry{}, err
	}
	e.snapshot = Bookmark{
		ID:    e.bookmarkID,
		URL:   url.String,
		Title: title.String,
		Tags:  tags.String,
		Desc:  desc.String,
		Flags: flags.Int64,
	}
	return e, nil
}
