// Package reader runs the content pipeline for one page render:
// fetch, normalize, sanitize, relate, present.
package reader

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ashkor/pressgate/internal/navigate"
	"github.com/ashkor/pressgate/internal/sanitize"
	"github.com/ashkor/pressgate/internal/toc"
	"github.com/ashkor/pressgate/internal/wordpress"
)

const descriptionMaxRunes = 160

// Source is the remote content client as the pipeline sees it.
type Source interface {
	FetchPost(ctx context.Context, id int) (*wordpress.Post, error)
	FetchIndex(ctx context.Context, pageSize int) ([]wordpress.IndexEntry, error)
	navigate.NeighborSource
	navigate.RelatedSource
	SearchPost(ctx context.Context, query string) (*wordpress.Post, error)
}

// Settings is the runtime-tunable part of the pipeline. Config reload
// swaps it atomically; a render keeps the settings it started with.
type Settings struct {
	IndexPageSize      int
	RelatedLimit       int
	FallbackCategoryID int
	TitleRecovery      bool
}

// ArticleCard is the lightweight projection used for neighbor navigation,
// related-content links, and the front-page listing. Title is decoded
// plain text.
type ArticleCard struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// PageMeta is the document metadata handed to the template layer.
type PageMeta struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	CanonicalURL string `json:"canonical_url,omitempty"`
}

// ArticlePage is the fully assembled render payload for one post.
type ArticlePage struct {
	ID          int                `json:"id"`
	Title       string             `json:"title"`
	PublishedAt time.Time          `json:"published_at"`
	BodyHTML    string             `json:"body_html"`
	Toc         []toc.Entry        `json:"toc"`
	Adjacency   navigate.Adjacency `json:"adjacency"`
	Previous    *ArticleCard       `json:"previous"`
	Next        *ArticleCard       `json:"next"`
	Related     []ArticleCard      `json:"related"`
	Meta        PageMeta           `json:"meta"`
}

// Service assembles article pages. It holds no state across renders
// beyond the source's own response cache.
type Service struct {
	src      Source
	settings atomic.Pointer[Settings]
	log      *slog.Logger
}

// NewService creates a reader service.
func NewService(src Source, settings Settings, log *slog.Logger) *Service {
	s := &Service{src: src, log: log}
	s.settings.Store(&settings)
	return s
}

// UpdateSettings atomically replaces the runtime-tunable settings.
func (s *Service) UpdateSettings(settings Settings) {
	s.settings.Store(&settings)
}

// ArticlePage fetches post id and assembles the full page payload.
//
// Only a failure to fetch the post itself propagates; index, neighbor,
// and related lookups degrade to nulls and empty lists. Every remote call
// is a single best-effort attempt.
func (s *Service) ArticlePage(ctx context.Context, id int) (*ArticlePage, error) {
	post, err := s.src.FetchPost(ctx, id)
	if err != nil {
		return nil, err
	}

	set := s.settings.Load()
	post = s.maybeRecoverRicherPost(ctx, post, set)

	var (
		adjacency          navigate.Adjacency
		prevPost, nextPost *wordpress.Post
		related            []wordpress.Post
	)

	// Index and related lookups have no data dependency and run in
	// parallel. Their failures never block the render.
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		adjacency, prevPost, nextPost = s.resolveNeighbors(gCtx, post, set)
		return nil
	})
	g.Go(func() error {
		categoryID := 0
		if c, ok := post.PrimaryCategory(); ok {
			categoryID = c.ID
		}
		r, relErr := navigate.ResolveRelated(gCtx, s.src, categoryID, set.FallbackCategoryID, post.ID, set.RelatedLimit)
		if relErr != nil {
			s.log.Warn("related lookup degraded",
				slog.Int("post_id", post.ID),
				slog.String("error", relErr.Error()))
			return nil
		}
		related = r
		return nil
	})
	_ = g.Wait()

	body, err := sanitize.Normalize(post.Body)
	if err != nil {
		// Unmatched fragments pass through unmodified rather than failing
		// the render.
		s.log.Warn("body normalization degraded",
			slog.Int("post_id", post.ID),
			slog.String("error", err.Error()))
	}
	outline, err := toc.Extract(body)
	if err != nil {
		s.log.Warn("toc extraction degraded",
			slog.Int("post_id", post.ID),
			slog.String("error", err.Error()))
	}

	title := sanitize.PlainText(post.Title)
	page := &ArticlePage{
		ID:          post.ID,
		Title:       title,
		PublishedAt: post.PublishedAt,
		BodyHTML:    outline.HTML,
		Toc:         outline.Entries,
		Adjacency:   adjacency,
		Previous:    cardFromPost(prevPost),
		Next:        cardFromPost(nextPost),
		Related:     cardsFromPosts(related),
		Meta: PageMeta{
			Title:        title,
			Description:  truncateRunes(sanitize.PlainText(post.Excerpt), descriptionMaxRunes),
			ImageURL:     post.FeaturedImageURL,
			CanonicalURL: post.Link,
		},
	}
	return page, nil
}

// ArticleList returns front-page cards from the bulk index.
func (s *Service) ArticleList(ctx context.Context, limit int) ([]ArticleCard, error) {
	entries, err := s.src.FetchIndex(ctx, limit)
	if err != nil {
		return nil, err
	}
	cards := make([]ArticleCard, len(entries))
	for i, e := range entries {
		cards[i] = ArticleCard{
			ID:          e.ID,
			Title:       sanitize.PlainText(e.Title),
			PublishedAt: e.PublishedAt,
		}
	}
	return cards, nil
}

// RelatedArticles returns up to limit cards sharing the primary category
// of post id. Unlike the assembled page, a failed lookup here is an error
// because relatedness is the whole result.
func (s *Service) RelatedArticles(ctx context.Context, id, limit int) ([]ArticleCard, error) {
	post, err := s.src.FetchPost(ctx, id)
	if err != nil {
		return nil, err
	}
	set := s.settings.Load()
	if limit <= 0 {
		limit = set.RelatedLimit
	}
	categoryID := 0
	if c, ok := post.PrimaryCategory(); ok {
		categoryID = c.ID
	}
	posts, err := navigate.ResolveRelated(ctx, s.src, categoryID, set.FallbackCategoryID, post.ID, limit)
	if err != nil {
		return nil, err
	}
	return cardsFromPosts(posts), nil
}

// resolveNeighbors prefers the date-based resolver, which stays correct
// beyond the index page window, and falls back to list position when the
// source rejects range filters. Both paths degrade to nil/nil.
func (s *Service) resolveNeighbors(ctx context.Context, post *wordpress.Post, set *Settings) (navigate.Adjacency, *wordpress.Post, *wordpress.Post) {
	if !post.PublishedAt.IsZero() {
		neighbors, err := navigate.ResolveAdjacencyByDate(ctx, s.src, post.PublishedAt)
		if err == nil {
			return neighbors.Adjacency(), neighbors.Previous, neighbors.Next
		}
		s.log.Warn("date adjacency failed, trying index",
			slog.Int("post_id", post.ID),
			slog.String("error", err.Error()))
	}

	index, err := s.src.FetchIndex(ctx, set.IndexPageSize)
	if err != nil {
		s.log.Warn("adjacency degraded",
			slog.Int("post_id", post.ID),
			slog.String("error", err.Error()))
		return navigate.Adjacency{}, nil, nil
	}

	adjacency := navigate.ResolveAdjacency(post.ID, index)

	// The two neighbor detail fetches are independent of each other.
	var prev, next *wordpress.Post
	var g errgroup.Group
	if adjacency.Previous != nil {
		prevID := adjacency.Previous.ID
		g.Go(func() error {
			p, fetchErr := s.src.FetchPost(ctx, prevID)
			if fetchErr != nil {
				s.log.Warn("previous post fetch degraded",
					slog.Int("post_id", prevID),
					slog.String("error", fetchErr.Error()))
				return nil
			}
			prev = p
			return nil
		})
	}
	if adjacency.Next != nil {
		nextID := adjacency.Next.ID
		g.Go(func() error {
			p, fetchErr := s.src.FetchPost(ctx, nextID)
			if fetchErr != nil {
				s.log.Warn("next post fetch degraded",
					slog.Int("post_id", nextID),
					slog.String("error", fetchErr.Error()))
				return nil
			}
			next = p
			return nil
		})
	}
	_ = g.Wait()

	return adjacency, prev, next
}

// maybeRecoverRicherPost re-fetches an alternate representation via text
// search on the decoded title when a body arrives with no inline styling,
// which some endpoints return inconsistently. Best-effort: any miss keeps
// the original post.
func (s *Service) maybeRecoverRicherPost(ctx context.Context, post *wordpress.Post, set *Settings) *wordpress.Post {
	if !set.TitleRecovery || post.Body == "" || sanitize.HasInlineStyling(post.Body) {
		return post
	}

	alt, err := s.src.SearchPost(ctx, sanitize.PlainText(post.Title))
	if err != nil {
		s.log.Warn("title recovery degraded",
			slog.Int("post_id", post.ID),
			slog.String("error", err.Error()))
		return post
	}
	if alt == nil || alt.ID != post.ID || !sanitize.HasInlineStyling(alt.Body) {
		return post
	}
	return alt
}

func cardFromPost(p *wordpress.Post) *ArticleCard {
	if p == nil {
		return nil
	}
	return &ArticleCard{
		ID:          p.ID,
		Title:       sanitize.PlainText(p.Title),
		PublishedAt: p.PublishedAt,
		ImageURL:    p.FeaturedImageURL,
	}
}

func cardsFromPosts(posts []wordpress.Post) []ArticleCard {
	cards := make([]ArticleCard, len(posts))
	for i := range posts {
		cards[i] = *cardFromPost(&posts[i])
	}
	return cards
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
