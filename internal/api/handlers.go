package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkovac/linkstash/internal/apperr"
	"github.com/mkovac/linkstash/internal/store"
)

// Handler holds API route handlers.
type Handler struct {
	st store.Store
}

// NewHandler creates a new Handler.
func NewHandler(st store.Store) *Handler {
	return &Handler{st: st}
}

func bookmarkID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// writeError maps store errors onto HTTP statuses.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrDuplicateURL):
		writeJSON(w, http.StatusConflict, errorBody("url already exists"))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrBadQuery), errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListBookmarks handles GET /bookmarks.
func (h *Handler) ListBookmarks(w http.ResponseWriter, _ *http.Request) {
	all, err := h.st.GetRecAll()
	if err != nil {
		writeError(w, "list bookmarks", err)
		return
	}
	writeJSON(w, http.StatusOK, BookmarkListResponse{Bookmarks: nonNil(all), Total: len(all)})
}

// GetBookmark handles GET /bookmarks/{id}.
func (h *Handler) GetBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := bookmarkID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	b, err := h.st.GetRecByID(id)
	if err != nil {
		writeError(w, "get bookmark", err)
		return
	}
	if b == nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// CreateBookmark handles POST /bookmarks.
func (h *Handler) CreateBookmark(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("url is required"))
		return
	}
	id, err := h.st.AddRec(req.URL, req.Title, req.Tags, req.Desc)
	if err != nil {
		writeError(w, "create bookmark", err)
		return
	}
	b, err := h.st.GetRecByID(id)
	if err != nil {
		writeError(w, "create bookmark", err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// UpdateBookmark handles PATCH /bookmarks/{id}.
func (h *Handler) UpdateBookmark(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id, ok := bookmarkID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	var req UpdateBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.st.UpdateRec(id, req.fields()); err != nil {
		writeError(w, "update bookmark", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteBookmark handles DELETE /bookmarks/{id}.
func (h *Handler) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := bookmarkID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	if err := h.st.DeleteRec(id); err != nil {
		writeError(w, "delete bookmark", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /search?q=kw&q=kw&any=true&regex=false.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	keywords := q["q"]
	matchAny, _ := strconv.ParseBool(q.Get("any"))
	regex, _ := strconv.ParseBool(q.Get("regex"))

	results, err := h.st.Search(keywords, matchAny, true, regex)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, BookmarkListResponse{Bookmarks: nonNil(results), Total: len(results)})
}

// SearchTags handles GET /search/tags?tag=a&tag=b.
func (h *Handler) SearchTags(w http.ResponseWriter, r *http.Request) {
	results, err := h.st.SearchTags(r.URL.Query()["tag"])
	if err != nil {
		writeError(w, "search tags", err)
		return
	}
	writeJSON(w, http.StatusOK, BookmarkListResponse{Bookmarks: nonNil(results), Total: len(results)})
}

// Undo handles POST /undo. An empty log is a normal outcome, reported
// as a null "undone" field, not an error.
func (h *Handler) Undo(w http.ResponseWriter, _ *http.Request) {
	res, err := h.st.UndoLast()
	if err != nil {
		writeError(w, "undo", err)
		return
	}
	writeJSON(w, http.StatusOK, UndoResponse{Undone: res})
}

func nonNil(s []store.Bookmark) []store.Bookmark {
	if s == nil {
		return []store.Bookmark{}
	}
	return s
}
