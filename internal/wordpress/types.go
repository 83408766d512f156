package wordpress

import (
	"encoding/json"
	"strings"
	"time"
)

// Post is one article snapshot as served by the remote source. Title and
// Body are raw rendered HTML; nothing here is decoded or sanitized.
type Post struct {
	ID               int        `json:"id"`
	Title            string     `json:"title"`
	Body             string     `json:"body"`
	Excerpt          string     `json:"excerpt"`
	Link             string     `json:"link"`
	PublishedAt      time.Time  `json:"published_at"`
	FeaturedImageURL string     `json:"featured_image_url,omitempty"`
	Categories       []Category `json:"categories"`
}

// Category is a taxonomy term attached to a post. The first category in
// Post.Categories is the primary one used for relatedness.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// PrimaryCategory returns the first category, if any.
func (p *Post) PrimaryCategory() (Category, bool) {
	if len(p.Categories) == 0 {
		return Category{}, false
	}
	return p.Categories[0], true
}

// IndexEntry is the minimal projection used for adjacency. The bulk index
// is served newest-first; adjacency depends on that order.
type IndexEntry struct {
	ID          int       `json:"id"`
	Title       string    `json:"title,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// wireTime parses the source's date format, which omits the timezone
// ("2006-01-02T15:04:05"). RFC 3339 is accepted as a fallback.
type wireTime struct {
	time.Time
}

func (t *wireTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
	}
	t.Time = parsed
	return nil
}

type wireRendered struct {
	Rendered string `json:"rendered"`
}

type wireMedia struct {
	SourceURL string `json:"source_url"`
}

type wireTerm struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Taxonomy string `json:"taxonomy"`
}

type wireEmbedded struct {
	FeaturedMedia []wireMedia  `json:"wp:featuredmedia"`
	Terms         [][]wireTerm `json:"wp:term"`
}

type wirePost struct {
	ID       int           `json:"id"`
	Date     wireTime      `json:"date"`
	Link     string        `json:"link"`
	Title    wireRendered  `json:"title"`
	Content  wireRendered  `json:"content"`
	Excerpt  wireRendered  `json:"excerpt"`
	Embedded *wireEmbedded `json:"_embedded"`
}

type wireIndexEntry struct {
	ID    int          `json:"id"`
	Date  wireTime     `json:"date"`
	Title wireRendered `json:"title"`
}

func (w *wirePost) toPost() Post {
	p := Post{
		ID:          w.ID,
		Title:       w.Title.Rendered,
		Body:        w.Content.Rendered,
		Excerpt:     w.Excerpt.Rendered,
		Link:        w.Link,
		PublishedAt: w.Date.Time,
	}
	if w.Embedded == nil {
		return p
	}
	if len(w.Embedded.FeaturedMedia) > 0 {
		p.FeaturedImageURL = w.Embedded.FeaturedMedia[0].SourceURL
	}
	// wp:term groups terms per taxonomy; keep category terms in source order.
	for _, group := range w.Embedded.Terms {
		for _, term := range group {
			if strings.EqualFold(term.Taxonomy, "category") {
				p.Categories = append(p.Categories, Category{ID: term.ID, Name: term.Name})
			}
		}
	}
	return p
}

func (w *wireIndexEntry) toEntry() IndexEntry {
	return IndexEntry{
		ID:          w.ID,
		Title:       w.Title.Rendered,
		PublishedAt: w.Date.Time,
	}
}
