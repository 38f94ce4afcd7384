package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkovac/linkstash/internal/apperr"
)

const bookmarkCols = `id, url, title, tags, desc, flags`

// AddRec inserts a new bookmark, mirrors it into the search index and
// logs the operation, all in one transaction. Returns the assigned id,
// or apperr.ErrDuplicateURL when the url is already taken.
func (db *DB) AddRec(url, title, tags, desc string) (int64, error) {
	if url == "" {
		return 0, fmt.Errorf("store: add: url is empty: %w", apperr.ErrInvalidInput)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.Exec(`INSERT INTO bookmarks (url, title, tags, desc, flags) VALUES (?, ?, ?, ?, 0)`,
		url, title, tags, desc)
	if err != nil {
		return 0, fmt.Errorf("store: add %q: %w", url, mapErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: add: last insert id: %w", err)
	}

	if err := ftsUpsert(tx, Bookmark{ID: id, URL: url, Title: title, Tags: tags, Desc: desc}); err != nil {
		return 0, err
	}
	// Undoing an add only needs the id, so no snapshot is logged.
	if err := appendUndo(tx, opAdd, id, nil, ""); err != nil {
		return 0, err
	}

	return id, tx.Commit()
}

// GetRecByID returns the bookmark with the given id, or nil when absent.
func (db *DB) GetRecByID(id int64) (*Bookmark, error) {
	var b Bookmark
	err := db.conn.QueryRow(`SELECT `+bookmarkCols+` FROM bookmarks WHERE id = ?`, id).
		Scan(&b.ID, &b.URL, &b.Title, &b.Tags, &b.Desc, &b.Flags)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %d: %w", id, err)
	}
	return &b, nil
}

// GetRecAll returns every bookmark, unordered.
func (db *DB) GetRecAll() ([]Bookmark, error) {
	rows, err := db.conn.Query(`SELECT ` + bookmarkCols + ` FROM bookmarks`)
	if err != nil {
		return nil, fmt.Errorf("store: get all: %w", err)
	}
	defer rows.Close()

	var out []Bookmark
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.ID, &b.URL, &b.Title, &b.Tags, &b.Desc, &b.Flags); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateRec applies the non-nil fields to one bookmark, logging the
// pre-update snapshot for undo and refreshing the search mirror. A
// missing id is an explicit no-op success: there is nothing to log or
// update.
func (db *DB) UpdateRec(id int64, fields UpdateFields) error {
	if fields.isZero() {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	cur, err := fetchTx(tx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return nil
	}

	if err := appendUndo(tx, opUpdate, id, cur, ""); err != nil {
		return err
	}
	if err := applyUpdate(tx, id, fields); err != nil {
		return err
	}
	if err := ftsUpsert(tx, fields.applyTo(*cur)); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateRecBatch applies the same patch to every given bookmark inside
// a single transaction, logging all pre-images under one shared batch
// id so the whole batch is undone as a unit. The batch is strictly
// all-or-nothing: the first failing row rolls back everything and the
// returned count is zero.
func (db *DB) UpdateRecBatch(recs []Bookmark, fields UpdateFields) (int, error) {
	return db.updateBatch(recs, func(Bookmark) UpdateFields { return fields })
}

// UpdateRecBatchTags behaves like UpdateRecBatch but each record's tags
// column is set from that record's own Tags value, which callers have
// precomputed (bulk tag add/remove). Shared fields still apply to all.
func (db *DB) UpdateRecBatchTags(recs []Bookmark, fields UpdateFields) (int, error) {
	return db.updateBatch(recs, func(b Bookmark) UpdateFields {
		f := fields
		tags := b.Tags
		f.Tags = &tags
		return f
	})
}

func (db *DB) updateBatch(recs []Bookmark, patch func(Bookmark) UpdateFields) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	batchID := uuid.NewString()

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	updated := 0
	for _, rec := range recs {
		fields := patch(rec)
		if fields.isZero() {
			continue
		}

		cur, err := fetchTx(tx, rec.ID)
		if err != nil {
			return 0, err
		}
		if cur == nil {
			// Row vanished since the caller read it; skip.
			continue
		}

		if err := appendUndo(tx, opUpdate, rec.ID, cur, batchID); err != nil {
			return 0, err
		}
		if err := applyUpdate(tx, rec.ID, fields); err != nil {
			return 0, err
		}
		if err := ftsUpsert(tx, fields.applyTo(*cur)); err != nil {
			return 0, err
		}
		updated++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit batch: %w", err)
	}
	return updated, nil
}

// DeleteRec removes one bookmark, logging the pre-delete snapshot so
// the row can be restored with its original id.
func (db *DB) DeleteRec(id int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	cur, err := fetchTx(tx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return fmt.Errorf("store: delete %d: %w", id, apperr.ErrNotFound)
	}

	if err := appendUndo(tx, opDelete, id, cur, ""); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM bookmarks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete %d: %w", id, err)
	}
	ftsDelete(tx, id)

	return tx.Commit()
}

// DeleteRecBatch removes the given bookmarks in one transaction under a
// shared batch id. Missing ids are skipped; the count of deleted rows
// is returned.
func (db *DB) DeleteRecBatch(ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	batchID := uuid.NewString()

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	deleted := 0
	for _, id := range ids {
		cur, err := fetchTx(tx, id)
		if err != nil {
			return 0, err
		}
		if cur == nil {
			continue
		}

		if err := appendUndo(tx, opDelete, id, cur, batchID); err != nil {
			return 0, err
		}
		if _, err := tx.Exec(`DELETE FROM bookmarks WHERE id = ?`, id); err != nil {
			return 0, fmt.Errorf("store: delete %d: %w", id, err)
		}
		ftsDelete(tx, id)
		deleted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit batch: %w", err)
	}
	return deleted, nil
}

// fetchTx reads one bookmark inside the given transaction, returning
// nil when the row does not exist.
func fetchTx(tx *sql.Tx, id int64) (*Bookmark, error) {
	var b Bookmark
	err := tx.QueryRow(`SELECT `+bookmarkCols+` FROM bookmarks WHERE id = ?`, id).
		Scan(&b.ID, &b.URL, &b.Title, &b.Tags, &b.Desc, &b.Flags)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: fetch %d: %w", id, err)
	}
	return &b, nil
}

func applyUpdate(tx *sql.Tx, id int64, fields UpdateFields) error {
	clause, args := fields.setClause()
	args = append(args, id)
	if _, err := tx.Exec(`UPDATE bookmarks SET `+clause+` WHERE id = ?`, args...); err != nil {
		return fmt.Errorf("store: update %d: %w", id, mapErr(err))
	}
	return nil
}
