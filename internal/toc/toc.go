// Package toc derives a table of contents from a sanitized article body
// and rewrites the body with stable in-page anchors.
package toc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ashkor/pressgate/internal/apperr"
)

// Entry is one outline item. Level is 2 or 3.
type Entry struct {
	AnchorID string `json:"anchor_id"`
	Text     string `json:"text"`
	Level    int    `json:"level"`
}

// Outline is the ordered table of contents plus the rewritten body.
type Outline struct {
	Entries []Entry `json:"entries"`
	HTML    string  `json:"html"`
}

const anchorPrefix = "section-"

// offsetClass reserves scroll offset under the fixed page header so a
// deep link does not land underneath it.
const offsetClass = "scroll-mt-28"

// Extract scans rawHTML for h2 and h3 elements in document order and
// assigns each an anchor from a single zero-based counter shared across
// both levels. Anchors are deterministic for a given body, so repeated
// renders of unmodified content keep deep links valid; editing the body
// shifts every subsequent anchor.
//
// When no headings are present the input is returned unchanged.
// Unparsable input is also returned unchanged, with
// apperr.ErrMalformedContent.
func Extract(rawHTML string) (Outline, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return Outline{Entries: []Entry{}, HTML: rawHTML}, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return Outline{Entries: []Entry{}, HTML: rawHTML},
			fmt.Errorf("%w: parse body: %v", apperr.ErrMalformedContent, err)
	}

	counter := 0
	entries := []Entry{}
	doc.Find("h2, h3").Each(func(_ int, s *goquery.Selection) {
		level := 2
		if goquery.NodeName(s) == "h3" {
			level = 3
		}
		anchor := anchorPrefix + strconv.Itoa(counter)
		counter++

		s.SetAttr("id", anchor)
		s.AddClass(offsetClass)

		entries = append(entries, Entry{
			AnchorID: anchor,
			Text:     strings.TrimSpace(s.Text()),
			Level:    level,
		})
	})

	if len(entries) == 0 {
		return Outline{Entries: entries, HTML: rawHTML}, nil
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		return Outline{Entries: []Entry{}, HTML: rawHTML},
			fmt.Errorf("%w: render body: %v", apperr.ErrMalformedContent, err)
	}
	return Outline{Entries: entries, HTML: out}, nil
}
