package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ashkor/pressgate/internal/reader"
)

// NewRouter creates a chi router with all API routes mounted. The surface
// is read-only; there are no write routes and no authentication.
func NewRouter(svc *reader.Service) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Articles.
	r.Get("/articles", h.ListArticles)
	r.Get("/articles/{id}", h.GetArticle)

	return r
}
