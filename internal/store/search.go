package store

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mkovac/linkstash/internal/apperr"
)

// Search evaluates keywords over the search mirror and returns the
// matching bookmarks most-relevant first. With matchAny the keywords
// are OR-joined, otherwise AND-joined. A single keyword that already
// looks like a composed boolean expression is passed through verbatim.
// With regex the first keyword is compiled as a regular expression and
// matched against every field of every bookmark, bypassing the index.
// deep is accepted for interface compatibility; substring matching is
// implicit in the index.
func (db *DB) Search(keywords []string, matchAny, deep, regex bool) ([]Bookmark, error) {
	_ = deep

	if len(keywords) == 0 {
		return db.GetRecAll()
	}

	if regex {
		return db.searchRegex(keywords[0])
	}

	ids, err := db.matchIDs(keywords, matchAny)
	if err != nil {
		return nil, err
	}
	return db.recsByID(ids)
}

// SearchTags evaluates keywords against the tags field only, always
// OR-joined.
func (db *DB) SearchTags(tags []string) ([]Bookmark, error) {
	if len(tags) == 0 {
		return db.GetRecAll()
	}
	ids, err := db.matchTagIDs(tags)
	if err != nil {
		return nil, err
	}
	return db.recsByID(ids)
}

func (db *DB) searchRegex(pattern string) ([]Bookmark, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("store: regex %q: %v: %w", pattern, err, apperr.ErrBadQuery)
	}

	all, err := db.GetRecAll()
	if err != nil {
		return nil, err
	}

	var out []Bookmark
	for _, b := range all {
		if re.MatchString(b.URL) || re.MatchString(b.Title) ||
			re.MatchString(b.Tags) || re.MatchString(b.Desc) {
			out = append(out, b)
		}
	}
	return out, nil
}

// recsByID hydrates bookmarks for the given ids, preserving the order
// the index returned them in.
func (db *DB) recsByID(ids []int64) ([]Bookmark, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.conn.Query(`SELECT `+bookmarkCols+` FROM bookmarks WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: hydrate results: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]Bookmark, len(ids))
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.ID, &b.URL, &b.Title, &b.Tags, &b.Desc, &b.Flags); err != nil {
			return nil, err
		}
		byID[b.ID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Bookmark, 0, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}
