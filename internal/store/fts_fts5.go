//go:build sqlite_fts5

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mkovac/linkstash/internal/apperr"
)

// The search mirror is a plain FTS5 table whose rowid equals the
// bookmark id. All writes to it happen inside the same transaction as
// the bookmarks write they mirror; see crud.go and undo.go.

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS bookmarks_fts USING fts5(
			url,
			title,
			tags,
			desc,
			tokenize = 'unicode61'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, b Bookmark) error {
	_, _ = tx.Exec(`DELETE FROM bookmarks_fts WHERE rowid = ?`, b.ID)
	_, err := tx.Exec(`INSERT INTO bookmarks_fts (rowid, url, title, tags, desc) VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.URL, b.Title, b.Tags, b.Desc)
	if err != nil {
		return fmt.Errorf("store: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id int64) {
	_, _ = tx.Exec(`DELETE FROM bookmarks_fts WHERE rowid = ?`, id)
}

// ftsBackfill bulk-populates the mirror on first run after the index
// was introduced: an empty FTS table next to a non-empty record table.
func ftsBackfill(conn *sql.DB) error {
	var ftsCount, recCount int64
	if err := conn.QueryRow(`SELECT count(*) FROM bookmarks_fts`).Scan(&ftsCount); err != nil {
		return fmt.Errorf("fts count: %w", err)
	}
	if err := conn.QueryRow(`SELECT count(*) FROM bookmarks`).Scan(&recCount); err != nil {
		return fmt.Errorf("bookmarks count: %w", err)
	}
	if ftsCount != 0 || recCount == 0 {
		return nil
	}
	_, err := conn.Exec(`
		INSERT INTO bookmarks_fts (rowid, url, title, tags, desc)
		SELECT id, url, title, tags, desc FROM bookmarks
	`)
	if err != nil {
		return fmt.Errorf("fts backfill: %w", err)
	}
	return nil
}

// quoteMatchKeywords escapes keywords for FTS5 MATCH so that quotes and
// boolean operators inside them cannot change the query structure. A
// non-empty column scopes every keyword to that column.
func quoteMatchKeywords(keywords []string, column string) []string {
	out := make([]string, len(keywords))
	for i, k := range keywords {
		escaped := strings.ReplaceAll(k, `"`, `""`)
		if column != "" {
			out[i] = fmt.Sprintf(`%s:"%s"`, column, escaped)
		} else {
			out[i] = `"` + escaped + `"`
		}
	}
	return out
}

// isComposedQuery reports whether a lone keyword is already a composed
// boolean expression that should be passed to MATCH verbatim.
func isComposedQuery(k string) bool {
	return strings.ContainsRune(k, '"') ||
		strings.Contains(k, " OR ") ||
		strings.Contains(k, " AND ")
}

// matchIDs evaluates keywords over the full mirror and returns matching
// ids ordered by relevance, ties broken by ascending rowid.
func (db *DB) matchIDs(keywords []string, matchAny bool) ([]int64, error) {
	var expr string
	if len(keywords) == 1 && isComposedQuery(keywords[0]) {
		expr = keywords[0]
	} else {
		join := " AND "
		if matchAny {
			join = " OR "
		}
		expr = strings.Join(quoteMatchKeywords(keywords, ""), join)
	}
	return db.matchQuery(expr)
}

// matchTagIDs evaluates keywords against the tags column only, always
// OR-joined.
func (db *DB) matchTagIDs(tags []string) ([]int64, error) {
	return db.matchQuery(strings.Join(quoteMatchKeywords(tags, "tags"), " OR "))
}

func (db *DB) matchQuery(expr string) ([]int64, error) {
	rows, err := db.conn.Query(`
		SELECT rowid FROM bookmarks_fts
		WHERE bookmarks_fts MATCH ?
		ORDER BY rank, rowid
	`, expr)
	if err != nil {
		return nil, fmt.Errorf("store: match %q: %v: %w", expr, err, apperr.ErrBadQuery)
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
	// The driver defers the first step of the statement, so a malformed
	// expression can also surface here rather than at Query.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: match %q: %v: %w", expr, err, apperr.ErrBadQuery)
	}
	return ids, nil
}
