package toc

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtract_TwoLevels(t *testing.T) {
	outline, err := Extract("<h2>Intro</h2><p>x</p><h3>Details</h3>")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := []Entry{
		{AnchorID: "section-0", Text: "Intro", Level: 2},
		{AnchorID: "section-1", Text: "Details", Level: 3},
	}
	if !reflect.DeepEqual(outline.Entries, want) {
		t.Errorf("entries = %+v, want %+v", outline.Entries, want)
	}
	if !strings.Contains(outline.HTML, `id="section-0"`) {
		t.Errorf("missing first anchor in %q", outline.HTML)
	}
	if !strings.Contains(outline.HTML, `id="section-1"`) {
		t.Errorf("missing second anchor in %q", outline.HTML)
	}
}

func TestExtract_SharedCounterAcrossLevels(t *testing.T) {
	outline, err := Extract("<h3>A</h3><h2>B</h2><h3>C</h3>")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(outline.Entries) != 3 {
		t.Fatalf("len = %d, want 3", len(outline.Entries))
	}
	for i, e := range outline.Entries {
		want := "section-" + string(rune('0'+i))
		if e.AnchorID != want {
			t.Errorf("entry %d anchor = %q, want %q", i, e.AnchorID, want)
		}
	}
}

func TestExtract_NoHeadingsUnchanged(t *testing.T) {
	in := "<p>no headings here</p>"
	outline, err := Extract(in)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(outline.Entries) != 0 {
		t.Errorf("entries = %v, want empty", outline.Entries)
	}
	if outline.HTML != in {
		t.Errorf("html = %q, want input unchanged", outline.HTML)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	in := "<h2>One</h2><h3>Two</h3><h2>Three</h2>"
	first, err := Extract(in)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	second, err := Extract(in)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !reflect.DeepEqual(first.Entries, second.Entries) {
		t.Errorf("repeated extraction differs: %+v vs %+v", first.Entries, second.Entries)
	}
	if first.HTML != second.HTML {
		t.Errorf("rewritten html differs between runs")
	}
}

func TestExtract_StripsHeadingMarkup(t *testing.T) {
	outline, err := Extract("<h2><strong>A &amp; B</strong></h2>")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(outline.Entries) != 1 {
		t.Fatalf("len = %d, want 1", len(outline.Entries))
	}
	if outline.Entries[0].Text != "A & B" {
		t.Errorf("text = %q, want %q", outline.Entries[0].Text, "A & B")
	}
}

func TestExtract_IgnoresOtherLevels(t *testing.T) {
	outline, err := Extract("<h1>Title</h1><h2>Section</h2><h4>Minor</h4>")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(outline.Entries) != 1 || outline.Entries[0].Level != 2 {
		t.Errorf("entries = %+v, want only the h2", outline.Entries)
	}
}

func TestExtract_AddsOffsetClass(t *testing.T) {
	outline, err := Extract("<h2>Intro</h2>")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(outline.HTML, offsetClass) {
		t.Errorf("offset class missing in %q", outline.HTML)
	}
}
