package store

import "strings"

// Bookmark is one row in the record table. Tags is an opaque
// delimiter-wrapped list (",a,b,"); tag semantics belong to callers.
type Bookmark struct {
	ID    int64  `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
	Tags  string `json:"tags"`
	Desc  string `json:"desc"`
	Flags int64  `json:"flags"`
}

// UpdateFields is a partial-update patch: nil pointers leave the
// corresponding column untouched.
type UpdateFields struct {
	URL   *string
	Title *string
	Tags  *string
	Desc  *string
	Flags *int64
}

func (f UpdateFields) isZero() bool {
	return f.URL == nil && f.Title == nil && f.Tags == nil && f.Desc == nil && f.Flags == nil
}

// setClause renders the non-nil fields as a SQL SET clause with its
// positional arguments.
func (f UpdateFields) setClause() (string, []any) {
	var (
		parts []string
		args  []any
	)
	if f.URL != nil {
		parts = append(parts, "url = ?")
		args = append(args, *f.URL)
	}
	if f.Title != nil {
		parts = append(parts, "title = ?")
		args = append(args, *f.Title)
	}
	if f.Tags != nil {
		parts = append(parts, "tags = ?")
		args = append(args, *f.Tags)
	}
	if f.Desc != nil {
		parts = append(parts, "desc = ?")
		args = append(args, *f.Desc)
	}
	if f.Flags != nil {
		parts = append(parts, "flags = ?")
		args = append(args, *f.Flags)
	}
	return strings.Join(parts, ", "), args
}

// applyTo returns a copy of b with the patch applied, used to refresh
// the search mirror after a partial update.
func (f UpdateFields) applyTo(b Bookmark) Bookmark {
	if f.URL != nil {
		b.URL = *f.URL
	}
	if f.Title != nil {
		b.Title = *f.Title
	}
	if f.Tags != nil {
		b.Tags = *f.Tags
	}
	if f.Desc != nil {
		b.Desc = *f.Desc
	}
	if f.Flags != nil {
		b.Flags = *f.Flags
	}
	return b
}

// UndoResult reports what a successful undo reverted.
type UndoResult struct {
	Operation string `json:"operation"`
	Affected  int    `json:"affected"`
}
