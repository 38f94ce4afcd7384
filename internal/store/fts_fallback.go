//go:build !sqlite_fts5

package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// Fallback when FTS5 is not compiled in: keyword search runs LIKE
// scans over the bookmarks table itself. Results come back in id order
// rather than relevance order; every consistency invariant still holds
// because there is no separate structure to drift.

func initFTS(_ *sql.DB) error { return nil }

func ftsUpsert(_ *sql.Tx, _ Bookmark) error { return nil }

func ftsDelete(_ *sql.Tx, _ int64) {}

func ftsBackfill(_ *sql.DB) error { return nil }

func (db *DB) matchIDs(keywords []string, matchAny bool) ([]int64, error) {
	join := " AND "
	if matchAny {
		join = " OR "
	}
	conds := make([]string, len(keywords))
	var args []any
	for i, k := range keywords {
		conds[i] = `(url LIKE ? ESCAPE '\' OR title LIKE ? ESCAPE '\' OR tags LIKE ? ESCAPE '\' OR desc LIKE ? ESCAPE '\')`
		like := likePattern(k)
		args = append(args, like, like, like, like)
	}
	query := `SELECT id FROM bookmarks WHERE ` + strings.Join(conds, join) + ` ORDER BY id`
	return db.likeQuery(query, args)
}

func (db *DB) matchTagIDs(tags []string) ([]int64, error) {
	conds := make([]string, len(tags))
	var args []any
	for i, t := range tags {
		conds[i] = `tags LIKE ? ESCAPE '\'`
		args = append(args, likePattern(t))
	}
	query := `SELECT id FROM bookmarks WHERE ` + strings.Join(conds, " OR ") + ` ORDER BY id`
	return db.likeQuery(query, args)
}

// likePattern wraps a keyword for substring matching, escaping LIKE
// metacharacters so they match literally.
func likePattern(k string) string {
	k = strings.ReplaceAll(k, `\`, `\\`)
	k = strings.ReplaceAll(k, `%`, `\%`)
	k = strings.ReplaceAll(k, `_`, `\_`)
	return "%" + k + "%"
}

func (db *DB) likeQuery(query string, args []any) ([]int64, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: like search: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
