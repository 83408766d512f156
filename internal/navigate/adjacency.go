// Package navigate computes sequential and category relationships between
// posts purely from client-visible list data; the remote source has no
// native next/previous or related support.
package navigate

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ashkor/pressgate/internal/wordpress"
)

// Adjacency holds a post's chronological neighbors under canonical
// newest-first ordering. Previous is the older post, Next the newer;
// either is nil at the corresponding boundary.
type Adjacency struct {
	Previous *wordpress.IndexEntry `json:"previous"`
	Next     *wordpress.IndexEntry `json:"next"`
}

// NeighborPosts carries the full neighbor posts resolved by the
// date-based lookup.
type NeighborPosts struct {
	Previous *wordpress.Post
	Next     *wordpress.Post
}

// Adjacency projects the neighbor posts down to index entries.
func (n NeighborPosts) Adjacency() Adjacency {
	var adj Adjacency
	if n.Previous != nil {
		adj.Previous = &wordpress.IndexEntry{
			ID:          n.Previous.ID,
			Title:       n.Previous.Title,
			PublishedAt: n.Previous.PublishedAt,
		}
	}
	if n.Next != nil {
		adj.Next = &wordpress.IndexEntry{
			ID:          n.Next.ID,
			Title:       n.Next.Title,
			PublishedAt: n.Next.PublishedAt,
		}
	}
	return adj
}

// ResolveAdjacency locates currentID in the newest-first index and reads
// its neighbors by list position: the entry after it is older, the entry
// before it newer. An id absent from the index (outside the fetched page
// window) yields nil/nil; that is a boundary limitation, not an error.
func ResolveAdjacency(currentID int, index []wordpress.IndexEntry) Adjacency {
	pos := -1
	for i := range index {
		if index[i].ID == currentID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return Adjacency{}
	}

	var adj Adjacency
	if pos+1 < len(index) {
		older := index[pos+1]
		adj.Previous = &older
	}
	if pos > 0 {
		newer := index[pos-1]
		adj.Next = &newer
	}
	return adj
}

// NeighborSource is the slice of the content client the date-based
// resolver needs.
type NeighborSource interface {
	FetchNeighborByDate(ctx context.Context, ref time.Time, dir wordpress.Direction) (*wordpress.Post, error)
}

// ResolveAdjacencyByDate asks the source for the single post published
// strictly before and strictly after publishedAt. Unlike the list-position
// algorithm it stays correct beyond the index page window, but it needs
// open-ended range filters on the source. The two lookups have no data
// dependency and run concurrently.
//
// Posts sharing an identical timestamp order however the source's
// secondary sort places them; no extra tie-break is imposed.
func ResolveAdjacencyByDate(ctx context.Context, src NeighborSource, publishedAt time.Time) (NeighborPosts, error) {
	var neighbors NeighborPosts

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := src.FetchNeighborByDate(gCtx, publishedAt, wordpress.Older)
		if err != nil {
			return err
		}
		neighbors.Previous = p
		return nil
	})
	g.Go(func() error {
		p, err := src.FetchNeighborByDate(gCtx, publishedAt, wordpress.Newer)
		if err != nil {
			return err
		}
		neighbors.Next = p
		return nil
	})

	if err := g.Wait(); err != nil {
		return NeighborPosts{}, err
	}
	return neighbors, nil
}
