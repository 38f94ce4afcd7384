package api

import "github.com/mkovac/linkstash/internal/store"

// CreateBookmarkRequest is the POST /bookmarks body.
type CreateBookmarkRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Tags  string `json:"tags"`
	Desc  string `json:"desc"`
}

// UpdateBookmarkRequest is the PATCH /bookmarks/{id} body. Absent
// fields leave the stored values untouched.
type UpdateBookmarkRequest struct {
	URL   *string `json:"url"`
	Title *string `json:"title"`
	Tags  *string `json:"tags"`
	Desc  *string `json:"desc"`
	Flags *int64  `json:"flags"`
}

func (r UpdateBookmarkRequest) fields() store.UpdateFields {
	return store.UpdateFields{
		URL:   r.URL,
		Title: r.Title,
		Tags:  r.Tags,
		Desc:  r.Desc,
		Flags: r.Flags,
	}
}

// BookmarkListResponse wraps list and search results.
type BookmarkListResponse struct {
	Bookmarks []store.Bookmark `json:"bookmarks"`
	Total     int              `json:"total"`
}

// UndoResponse reports the outcome of POST /undo. Undone is null when
// the log was empty.
type UndoResponse struct {
	Undone *store.UndoResult `json:"undone"`
}
