package store

import (
	"database/sql"
	"fmt"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS bookmarks (
	id    INTEGER PRIMARY KEY,
	url   TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL DEFAULT '',
	tags  TEXT NOT NULL DEFAULT ',',
	desc  TEXT NOT NULL DEFAULT '',
	flags INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS undo_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp   INTEGER,
	operation   TEXT,
	bookmark_id INTEGER,
	batch_id    TEXT,
	url         TEXT,
	title       TEXT,
	tags        TEXT,
	desc        TEXT,
	flags       INTEGER
);
`

// applySchema creates the tables, upgrades databases written by older
// versions, and backfills the search mirror when it is missing.
func applySchema(conn *sql.DB) error {
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		return fmt.Errorf("core schema: %w", err)
	}

	// Structural upgrades for databases created before these columns
	// existed. CREATE TABLE IF NOT EXISTS does not touch such files.
	upgrades := []struct {
		table, column, ddl string
	}{
		{"bookmarks", "flags", `ALTER TABLE bookmarks ADD COLUMN flags INTEGER NOT NULL DEFAULT 0`},
		{"undo_log", "batch_id", `ALTER TABLE undo_log ADD COLUMN batch_id TEXT`},
	}
	for _, u := range upgrades {
		ok, err := hasColumn(conn, u.table, u.column)
		if err != nil {
			return err
		}
		if !ok {
			if _, err := conn.Exec(u.ddl); err != nil {
				return fmt.Errorf("add %s.%s: %w", u.table, u.column, err)
			}
		}
	}

	if err := initFTS(conn); err != nil {
		return fmt.Errorf("fts schema: %w", err)
	}
	return ftsBackfill(conn)
}

func hasColumn(conn *sql.DB, table, column string) (bool, error) {
	rows, err := conn.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return false, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
