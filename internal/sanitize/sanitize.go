// Package sanitize strips CMS-authored presentation from remote HTML so
// the design system owns formatting. All remote HTML is untrusted and
// must pass through Normalize before rendering.
package sanitize

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ashkor/pressgate/internal/apperr"
)

// Normalize removes inline style attributes and fixed pixel width/height
// attributes from rawHTML. Tag nesting, element order, and text content
// are preserved. Normalize is idempotent.
//
// Input that cannot be parsed is returned unchanged together with
// apperr.ErrMalformedContent; callers render the original rather than
// dropping it.
func Normalize(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return rawHTML, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML, fmt.Errorf("%w: parse body: %v", apperr.ErrMalformedContent, err)
	}

	doc.Find("[style]").RemoveAttr("style")
	doc.Find("[width]").Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("width"); ok && isPixelValue(v) {
			s.RemoveAttr("width")
		}
	})
	doc.Find("[height]").Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("height"); ok && isPixelValue(v) {
			s.RemoveAttr("height")
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return rawHTML, fmt.Errorf("%w: render body: %v", apperr.ErrMalformedContent, err)
	}
	return out, nil
}

// HasInlineStyling reports whether rawHTML carries any inline style
// attribute. The title-recovery strategy uses this to detect the
// stripped-down representation some endpoints return.
func HasInlineStyling(rawHTML string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return false
	}
	return doc.Find("[style]").Length() > 0
}

// DecodeEntities decodes numeric and named HTML character references for
// plain-text contexts such as titles.
func DecodeEntities(s string) string {
	return html.UnescapeString(s)
}

// PlainText strips markup from an HTML fragment and decodes entities,
// collapsing surrounding whitespace. Unparsable input degrades to entity
// decoding only.
func PlainText(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return strings.TrimSpace(html.UnescapeString(rawHTML))
	}
	return strings.TrimSpace(doc.Text())
}

// isPixelValue matches fixed pixel sizes ("640", "640px"). Relative sizes
// such as percentages are left alone.
func isPixelValue(v string) bool {
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	if v == "" {
		return false
	}
	_, err := strconv.Atoi(v)
	return err == nil
}
