// Package wordpress implements the read-only client for the remote
// WordPress-style REST content source.
package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ashkor/pressgate/internal/apperr"
)

const (
	apiPrefix = "/wp-json/wp/v2"

	// MaxPageSize is the remote source's per-page cap. Callers must not
	// assume more items are returned in one call.
	MaxPageSize = 100

	defaultTimeout   = 15 * time.Second
	maxResponseBytes = 10 << 20
	wordpressTimeFmt = "2006-01-02T15:04:05"
	defaultUserAgent = "pressgate/1.0"
)

// Direction selects which chronological neighbor a date-based lookup
// resolves.
type Direction int

const (
	// Older resolves the post published strictly before the reference date.
	Older Direction = iota
	// Newer resolves the post published strictly after the reference date.
	Newer
)

// Windows holds the per-call staleness tolerance for each read kind.
// Zero means always refetch.
type Windows struct {
	Post    time.Duration
	Index   time.Duration
	Related time.Duration
}

// Config configures a Client. BaseURL is the site root; the REST prefix
// is appended by the client.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	UserAgent     string
	IndexPageSize int
	Windows       Windows
}

// Client issues read requests against the remote content source. All
// methods are safe for concurrent use; cached responses are shared
// within the declared staleness window only.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	cache      *responseCache
	pageSize   int
	userAgent  string
	windows    atomic.Pointer[Windows]
	log        *slog.Logger
}

// NewClient builds a Client from explicit configuration.
func NewClient(cfg Config, log *slog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pageSize := cfg.IndexPageSize
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	c := &Client{
		base:       base,
		httpClient: &http.Client{Timeout: timeout},
		cache:      newResponseCache(responseCacheMaxEntries),
		pageSize:   pageSize,
		userAgent:  userAgent,
		log:        log,
	}
	windows := cfg.Windows
	c.windows.Store(&windows)
	return c, nil
}

// SetWindows atomically replaces the staleness windows. Used by config
// reload; in-flight requests keep the windows they started with.
func (c *Client) SetWindows(w Windows) {
	c.windows.Store(&w)
}

// FetchPost returns the full post with embedded media and taxonomy terms.
// A client-error response maps to apperr.ErrNotFound; transport failures
// and malformed payloads map to apperr.ErrSourceUnavailable.
func (c *Client) FetchPost(ctx context.Context, id int) (*Post, error) {
	if id <= 0 {
		return nil, fmt.Errorf("post id %d: %w", id, apperr.ErrNotFound)
	}

	u := c.endpoint("/posts/"+strconv.Itoa(id), url.Values{"_embed": {"1"}})
	body, status, err := c.get(ctx, u, c.windows.Load().Post)
	if err != nil {
		return nil, err
	}
	if status >= 400 && status < 500 {
		return nil, fmt.Errorf("post %d: %w", id, apperr.ErrNotFound)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: post %d: unexpected status %d", apperr.ErrSourceUnavailable, id, status)
	}

	var w wirePost
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("%w: decode post %d: %v", apperr.ErrSourceUnavailable, id, err)
	}
	post := w.toPost()
	return &post, nil
}

// FetchIndex returns the bulk index of posts, newest first, capped at the
// source's page size. An empty corpus yields an empty slice, not an error.
func (c *Client) FetchIndex(ctx context.Context, pageSize int) ([]IndexEntry, error) {
	if pageSize <= 0 {
		pageSize = c.pageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	u := c.endpoint("/posts", url.Values{
		"per_page": {strconv.Itoa(pageSize)},
		"_fields":  {"id,date,title"},
	})
	body, err := c.getList(ctx, u, c.windows.Load().Index)
	if err != nil {
		return nil, err
	}

	var wire []wireIndexEntry
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: decode index: %v", apperr.ErrSourceUnavailable, err)
	}
	entries := make([]IndexEntry, len(wire))
	for i := range wire {
		entries[i] = wire[i].toEntry()
	}
	return entries, nil
}

// FetchPostsByCategory returns up to limit posts in the given category,
// always excluding excludeID. Ordering follows the source's default.
func (c *Client) FetchPostsByCategory(ctx context.Context, categoryID, excludeID, limit int) ([]Post, error) {
	if limit <= 0 {
		return []Post{}, nil
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	values := url.Values{
		"categories": {strconv.Itoa(categoryID)},
		"per_page":   {strconv.Itoa(limit)},
		"_embed":     {"1"},
	}
	if excludeID > 0 {
		values.Set("exclude", strconv.Itoa(excludeID))
	}
	return c.fetchPosts(ctx, c.endpoint("/posts", values), c.windows.Load().Related)
}

// FetchNeighborByDate returns the single post published strictly before
// (Older) or after (Newer) the reference date, or nil when the reference
// sits at the corresponding chronological boundary.
func (c *Client) FetchNeighborByDate(ctx context.Context, ref time.Time, dir Direction) (*Post, error) {
	values := url.Values{
		"per_page": {"1"},
		"orderby":  {"date"},
		"_embed":   {"1"},
	}
	stamp := ref.Format(wordpressTimeFmt)
	switch dir {
	case Older:
		values.Set("order", "desc")
		values.Set("before", stamp)
	case Newer:
		values.Set("order", "asc")
		values.Set("after", stamp)
	default:
		return nil, fmt.Errorf("unknown direction %d", dir)
	}

	posts, err := c.fetchPosts(ctx, c.endpoint("/posts", values), c.windows.Load().Index)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return &posts[0], nil
}

// SearchPost returns the best text-search match for query, or nil when
// nothing matches. Used by the title-recovery strategy only.
func (c *Client) SearchPost(ctx context.Context, query string) (*Post, error) {
	if query == "" {
		return nil, nil
	}
	values := url.Values{
		"search":   {query},
		"per_page": {"1"},
		"_embed":   {"1"},
	}
	posts, err := c.fetchPosts(ctx, c.endpoint("/posts", values), c.windows.Load().Post)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return &posts[0], nil
}

func (c *Client) fetchPosts(ctx context.Context, u string, maxAge time.Duration) ([]Post, error) {
	body, err := c.getList(ctx, u, maxAge)
	if err != nil {
		return nil, err
	}
	var wire []wirePost
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: decode posts: %v", apperr.ErrSourceUnavailable, err)
	}
	posts := make([]Post, len(wire))
	for i := range wire {
		posts[i] = wire[i].toPost()
	}
	return posts, nil
}

// getList fetches a collection endpoint, where any non-200 response is a
// source failure. Merely-empty results arrive as "[]" bodies and are not
// errors.
func (c *Client) getList(ctx context.Context, u string, maxAge time.Duration) ([]byte, error) {
	body, status, err := c.get(ctx, u, maxAge)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", apperr.ErrSourceUnavailable, status)
	}
	return body, nil
}

// get performs one read, consulting the response cache within maxAge.
// Only 200 responses are cached.
func (c *Client) get(ctx context.Context, u string, maxAge time.Duration) ([]byte, int, error) {
	now := time.Now()
	if body, ok := c.cache.get(u, maxAge, now); ok {
		c.log.Debug("source cache hit", slog.String("url", u))
		return body, http.StatusOK, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: do request: %v", apperr.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read response: %v", apperr.ErrSourceUnavailable, err)
	}

	if resp.StatusCode == http.StatusOK {
		c.cache.set(u, body, now)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) endpoint(path string, values url.Values) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + apiPrefix + path
	u.RawQuery = values.Encode()
	return u.String()
}
