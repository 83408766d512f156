package wordpress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ashkor/pressgate/internal/apperr"
	"github.com/ashkor/pressgate/internal/testutil"
)

func fixturePosts() []testutil.SourcePost {
	return []testutil.SourcePost{
		{
			ID:       9,
			Title:    "Newest &amp; Best",
			Body:     `<p style="color:red">new</p>`,
			Excerpt:  "<p>newest excerpt</p>",
			Date:     "2024-03-03T09:00:00",
			Link:     "https://example.com/9",
			ImageURL: "https://img.example.com/9.jpg",
			Categories: []testutil.SourceCategory{
				{ID: 3, Name: "Tools"},
			},
		},
		{
			ID:      7,
			Title:   "Middle Post",
			Body:    "<h2>Intro</h2><p>x</p>",
			Excerpt: "<p>middle excerpt</p>",
			Date:    "2024-03-01T10:00:00",
			Categories: []testutil.SourceCategory{
				{ID: 3, Name: "Tools"},
				{ID: 5, Name: "Guides"},
			},
		},
		{
			ID:    5,
			Title: "Oldest Post",
			Body:  "<p>old</p>",
			Date:  "2024-02-20T08:00:00",
			Categories: []testutil.SourceCategory{
				{ID: 3, Name: "Tools"},
			},
		},
	}
}

func testClient(t *testing.T, f *testutil.FakeSource, windows Windows) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: f.BaseURL(), Windows: windows}, testutil.DiscardLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestFetchPost_Embedded(t *testing.T) {
	f := testutil.NewFakeSource(t, fixturePosts())
	c := testClient(t, f, Windows{})

	post, err := c.FetchPost(context.Background(), 9)
	if err != nil {
		t.Fatalf("FetchPost: %v", err)
	}
	if post.ID != 9 {
		t.Errorf("id = %d, want 9", post.ID)
	}
	if post.Title != "Newest &amp; Best" {
		t.Errorf("title = %q (raw rendered title expected)", post.Title)
	}
	if post.FeaturedImageURL != "https://img.example.com/9.jpg" {
		t.Errorf("featured image = %q", post.FeaturedImageURL)
	}
	want := time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC)
	if !post.PublishedAt.Equal(want) {
		t.Errorf("published at = %v, want %v", post.PublishedAt, want)
	}
	if len(post.Categories) != 1 || post.Categories[0].Name != "Tools" {
		t.Errorf("categories = %v", post.Categories)
	}
}

func TestFetchPost_PrimaryCategoryOrder(t *testing.T) {
	f := testutil.NewFakeSource(t, fixturePosts())
	c := testClient(t, f, Windows{})

	post, err := c.FetchPost(context.Background(), 7)
	if err != nil {
		t.Fatalf("FetchPost: %v", err)
	}
	primary, ok := post.PrimaryCategory()
	if !ok || primary.ID != 3 {
		t.Errorf("primary category = %v, ok = %v, want id 3", primary, ok)
	}
}

func TestFetchPost_NotFound(t *testing.T) {
	f := testutil.NewFakeSource(t, fixturePosts())
	c := testClient(t, f, Windows{})

	_, err := c.FetchPost(context.Background(), 12345)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	_, err = c.FetchPost(context.Background(), 0)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err for id 0 = %v, want ErrNotFound", err)
	}
}

func TestFetchPost_SourceUnavailable(t *testing.T) {
	f := testutil.NewFakeSource(t, fixturePosts())
	f.FailAll(true)
	c := testClient(t, f, Windows{})

	_, err := c.FetchPost(context.Background(), 9)
	if !errors.Is(err, apperr.ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestFetchIndex_NewestFirst(t *testing.T) {
	f := testutil.NewFakeSource(t, fixturePosts())
	c := testClient(t, f, Windows{})

	entries, err := c.FetchIndex(context.Background(), 100)
	if err != nil {
		t.Fatalf("FetchIndex: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	ids := []int{entries[0].ID, entries[1].ID, entries[2].ID}
	if ids[0] != 9 || ids[1] != 7 || ids[2] != 5 {
		t.Errorf("ids = %v, want [9 7 5]", ids)
	}
}

func TestFetchIndex_EmptyCorpus(t *testing.T) {
	f := testutil.NewFakeSource(t, nil)
	c := testClient(t, f, Windows{})

	entries, err := c.FetchIndex(context.Background(), 10)
	if err != nil {
		t.Fatalf("empty corpus should not error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("len = %d, want 0", len(entries))
	}
}

func TestFetchIndex_ListFailure(t *testing.T) {
	f := testutil.NewFakeSource(t, fixturePosts())
	f.FailLists(true)
	c := testClient(t, f, Windows{})

	_, err := c.FetchIndex(context.Background(), 10)
	if !errors.Is(err, apperr.ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestFetchPostsByCategory_Excludes(t *testing.T) {
	f := testutil.NewFakeSource(t, fixturePosts())
	c := testClient(t, f, Windows{})

	posts, err := c.FetchPostsByCategory(context.Background(), 3, 7, 10)
	if err != nil {
		t.Fatalf("FetchPostsByCategory: %v", err)
	}
	for _, p := range posts {
		if p.ID == 7 {
			t.Errorf("excluded id 7 present in %v", posts)
		}
	}
	if len(posts) != 2 {
		t.Errorf("len = %d, want 2", len(posts))
	}
}

func TestFetchNeighborByDate(t *testing.T) {
	f := testutil.NewFakeSource(t, fixturePosts())
	c := testClient(t, f, Windows{})
	ref := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	older, err := c.FetchNeighborByDate(context.Background(), ref, Older)
	if err != nil {
		t.Fatalf("older: %v", err)
	}
	if older == nil || older.ID != 5 {
		t.Errorf("older = %v, want id 5", older)
	}

	newer, err := c.FetchNeighborByDate(context.Background(), ref, Newer)
	if err != nil {
		t.Fatalf("newer: %v", err)
	}
	if newer == nil || newer.ID != 9 {
		t.Errorf("newer = %v, want id 9", newer)
	}
}

func TestFetchNeighborByDate_Boundary(t *testing.T) {
	f := testutil.NewFakeSource(t, fixturePosts())
	c := testClient(t, f, Windows{})
	newest := time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC)

	neighbor, err := c.FetchNeighborByDate(context.Background(), newest, Newer)
	if err != nil {
		t.Fatalf("newer: %v", err)
	}
	if neighbor != nil {
		t.Errorf("neighbor beyond newest = %v, want nil", neighbor)
	}
}

func TestSearchPost(t *testing.T) {
	f := testutil.NewFakeSource(t, fixturePosts())
	c := testClient(t, f, Windows{})

	post, err := c.SearchPost(context.Background(), "Middle")
	if err != nil {
		t.Fatalf("SearchPost: %v", err)
	}
	if post == nil || post.ID != 7 {
		t.Errorf("post = %v, want id 7", post)
	}

	miss, err := c.SearchPost(context.Background(), "no such title")
	if err != nil {
		t.Fatalf("SearchPost miss: %v", err)
	}
	if miss != nil {
		t.Errorf("miss = %v, want nil", miss)
	}
}

func TestStalenessWindow(t *testing.T) {
	f := testutil.NewFakeSource(t, fixturePosts())
	c := testClient(t, f, Windows{Index: time.Hour})

	if _, err := c.FetchIndex(context.Background(), 10); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if _, err := c.FetchIndex(context.Background(), 10); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if got := f.Requests(); got != 1 {
		t.Errorf("requests = %d, want 1 (second read inside window)", got)
	}

	// Window of zero means always refetch.
	c.SetWindows(Windows{})
	if _, err := c.FetchIndex(context.Background(), 10); err != nil {
		t.Fatalf("third fetch: %v", err)
	}
	if got := f.Requests(); got != 2 {
		t.Errorf("requests = %d, want 2 after window reset", got)
	}
}
