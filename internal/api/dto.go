package api

import "github.com/ashkor/pressgate/internal/reader"

// ArticlePage is the assembled page payload (aliased from the domain layer).
type ArticlePage = reader.ArticlePage

// ArticleCard is a lightweight listing item (aliased from the domain layer).
type ArticleCard = reader.ArticleCard

// ArticleListResponse wraps the front-page listing.
type ArticleListResponse struct {
	Articles []ArticleCard `json:"articles"`
	Total    int           `json:"total"`
}
