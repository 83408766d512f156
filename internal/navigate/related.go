package navigate

import (
	"context"

	"github.com/ashkor/pressgate/internal/wordpress"
)

// RelatedSource is the slice of the content client the related-content
// resolver needs.
type RelatedSource interface {
	FetchPostsByCategory(ctx context.Context, categoryID, excludeID, limit int) ([]wordpress.Post, error)
}

// ResolveRelated returns up to limit posts sharing categoryID in the
// source's default order. A post with no category falls back to
// fallbackCategoryID rather than failing. excludeID is never part of the
// result, even when the source ignores its exclude filter.
func ResolveRelated(ctx context.Context, src RelatedSource, categoryID, fallbackCategoryID, excludeID, limit int) ([]wordpress.Post, error) {
	if categoryID <= 0 {
		categoryID = fallbackCategoryID
	}

	posts, err := src.FetchPostsByCategory(ctx, categoryID, excludeID, limit)
	if err != nil {
		return nil, err
	}

	related := make([]wordpress.Post, 0, len(posts))
	for _, p := range posts {
		if p.ID == excludeID {
			continue
		}
		related = append(related, p)
	}
	if limit > 0 && len(related) > limit {
		related = related[:limit]
	}
	return related, nil
}
