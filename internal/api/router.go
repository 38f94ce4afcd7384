package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/mkovac/linkstash/internal/store"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(st store.Store, authEnabled bool, token string) chi.Router {
	h := NewHandler(st)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Bookmark CRUD.
	r.Get("/bookmarks", h.ListBookmarks)
	r.Post("/bookmarks", h.CreateBookmark)
	r.Get("/bookmarks/{id}", h.GetBookmark)
	r.Patch("/bookmarks/{id}", h.UpdateBookmark)
	r.Delete("/bookmarks/{id}", h.DeleteBookmark)

	// Search.
	r.Get("/search", h.Search)
	r.Get("/search/tags", h.SearchTags)

	// Undo.
	r.Post("/undo", h.Undo)

	return r
}
