// Package testutil provides a fake WordPress-style content source backed
// by httptest for exercising the pipeline without a network.
package testutil

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// DiscardLogger returns a logger that swallows everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const timeLayout = "2006-01-02T15:04:05"

// SourceCategory is a taxonomy term attached to a fake post.
type SourceCategory struct {
	ID   int
	Name string
}

// SourcePost is the authoring shape for one fake post. Date uses the
// source's timezone-less layout ("2024-03-01T10:00:00").
type SourcePost struct {
	ID         int
	Title      string
	Body       string
	Excerpt    string
	Date       string
	Link       string
	ImageURL   string
	Categories []SourceCategory
}

// FakeSource serves the subset of the WordPress REST API the client uses.
type FakeSource struct {
	Server *httptest.Server

	mu        sync.Mutex
	posts     []SourcePost
	failLists bool
	failAll   bool
	requests  int
}

// NewFakeSource starts a fake source with the given posts. Posts are kept
// newest-first, matching the remote source's default order.
func NewFakeSource(t *testing.T, posts []SourcePost) *FakeSource {
	t.Helper()

	f := &FakeSource{posts: append([]SourcePost(nil), posts...)}
	sort.SliceStable(f.posts, func(i, j int) bool {
		return f.posts[i].Date > f.posts[j].Date
	})

	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL returns the fake site root.
func (f *FakeSource) BaseURL() string {
	return f.Server.URL
}

// FailLists makes collection endpoints return 500 while single-post
// lookups keep working.
func (f *FakeSource) FailLists(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failLists = fail
}

// FailAll makes every endpoint return 500.
func (f *FakeSource) FailAll(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAll = fail
}

// Requests returns how many requests the source has served.
func (f *FakeSource) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *FakeSource) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests++
	posts := append([]SourcePost(nil), f.posts...)
	failLists := f.failLists
	failAll := f.failAll
	f.mu.Unlock()

	if failAll {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}

	const prefix = "/wp-json/wp/v2/posts"
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) {
		http.NotFound(w, r)
		return
	}

	rest := strings.TrimPrefix(path, prefix)
	if rest == "" || rest == "/" {
		if failLists {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		f.serveList(w, r.URL.Query(), posts)
		return
	}

	id, err := strconv.Atoi(strings.Trim(rest, "/"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	for _, p := range posts {
		if p.ID == id {
			writeJSON(w, postJSON(p))
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"code":"rest_post_invalid_id","message":"Invalid post ID.","data":{"status":404}}`))
}

func (f *FakeSource) serveList(w http.ResponseWriter, q url.Values, posts []SourcePost) {
	matched := posts

	if search := q.Get("search"); search != "" {
		matched = filter(matched, func(p SourcePost) bool {
			return strings.Contains(strings.ToLower(p.Title), strings.ToLower(search))
		})
	}
	if cat := q.Get("categories"); cat != "" {
		catID, _ := strconv.Atoi(cat)
		matched = filter(matched, func(p SourcePost) bool {
			for _, c := range p.Categories {
				if c.ID == catID {
					return true
				}
			}
			return false
		})
	}
	if exclude := q.Get("exclude"); exclude != "" {
		excludeID, _ := strconv.Atoi(exclude)
		matched = filter(matched, func(p SourcePost) bool { return p.ID != excludeID })
	}
	if before := q.Get("before"); before != "" {
		if ref, err := time.Parse(timeLayout, before); err == nil {
			matched = filter(matched, func(p SourcePost) bool { return postTime(p).Before(ref) })
		}
	}
	if after := q.Get("after"); after != "" {
		if ref, err := time.Parse(timeLayout, after); err == nil {
			matched = filter(matched, func(p SourcePost) bool { return postTime(p).After(ref) })
		}
	}

	// Stored order is newest-first; ascending queries reverse it.
	if q.Get("order") == "asc" {
		reversed := make([]SourcePost, len(matched))
		for i, p := range matched {
			reversed[len(matched)-1-i] = p
		}
		matched = reversed
	}

	perPage := len(matched)
	if raw := q.Get("per_page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n < perPage {
			perPage = n
		}
	}
	matched = matched[:perPage]

	out := make([]map[string]any, len(matched))
	for i, p := range matched {
		out[i] = postJSON(p)
	}
	writeJSON(w, out)
}

func postTime(p SourcePost) time.Time {
	t, _ := time.Parse(timeLayout, p.Date)
	return t
}

func filter(posts []SourcePost, keep func(SourcePost) bool) []SourcePost {
	out := make([]SourcePost, 0, len(posts))
	for _, p := range posts {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func postJSON(p SourcePost) map[string]any {
	m := map[string]any{
		"id":      p.ID,
		"date":    p.Date,
		"link":    p.Link,
		"title":   map[string]any{"rendered": p.Title},
		"content": map[string]any{"rendered": p.Body},
		"excerpt": map[string]any{"rendered": p.Excerpt},
	}

	embedded := map[string]any{}
	if p.ImageURL != "" {
		embedded["wp:featuredmedia"] = []map[string]any{{"source_url": p.ImageURL}}
	}
	if len(p.Categories) > 0 {
		terms := make([]map[string]any, len(p.Categories))
		for i, c := range p.Categories {
			terms[i] = map[string]any{"id": c.ID, "name": c.Name, "taxonomy": "category"}
		}
		embedded["wp:term"] = []any{terms}
	}
	if len(embedded) > 0 {
		m["_embedded"] = embedded
	}
	return m
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(err)
	}
}
