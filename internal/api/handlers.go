// Package api implements the Pressgate REST API using chi.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ashkor/pressgate/internal/apperr"
	"github.com/ashkor/pressgate/internal/reader"
)

// Handler holds API route handlers.
type Handler struct {
	svc *reader.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *reader.Service) *Handler {
	return &Handler{svc: svc}
}

// GetArticle handles GET /api/articles/{id}. The id is a string-encoded
// positive integer; anything else is a bad request. A missing post is a
// plain not-found outcome, never a raw error.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("id must be a positive integer"))
		return
	}

	page, err := h.svc.ArticlePage(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrSourceUnavailable):
			slog.Error("article fetch failed", slog.Int("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusBadGateway, errorBody("content source unavailable"))
		default:
			slog.Error("article assembly failed", slog.Int("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSONCached(w, r, page)
}

// ListArticles handles GET /api/articles.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	cards, err := h.svc.ArticleList(r.Context(), limit)
	if err != nil {
		if errors.Is(err, apperr.ErrSourceUnavailable) {
			slog.Error("article list failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusBadGateway, errorBody("content source unavailable"))
			return
		}
		slog.Error("article list failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSONCached(w, r, ArticleListResponse{Articles: cards, Total: len(cards)})
}
