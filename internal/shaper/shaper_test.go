package shaper

import (
	"strings"
	"testing"

	"scribe/internal/segment"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  hello   world  ", "Hello world"},
		{"wait , what ?", "Wait, what?"},
		{"done .", "Done."},
		{"already Clean!", "Already Clean!"},
		{"   ", ""},
		{"é accented start", "É accented start"},
	}
	for _, tt := range tests {
		if got := CleanText(tt.input); got != tt.expected {
			t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestShapeMergesShortFragments(t *testing.T) {
	input := []segment.Segment{
		{Start: 0, End: 0.4, Text: "Hi"},
		{Start: 0.5, End: 0.9, Text: "there"},
	}
	got := Shape(input, Options{})
	if len(got) != 1 {
		t.Fatalf("expected 1 merged segment, got %d: %+v", len(got), got)
	}
	if got[0].Text != "Hi there" {
		t.Fatalf("merged text = %q", got[0].Text)
	}
	if got[0].Start != 0 || got[0].End != 0.9 {
		t.Fatalf("merged timing = %v-%v", got[0].Start, got[0].End)
	}
}

func TestShapeCapitalizesMergedCueOnce(t *testing.T) {
	input := []segment.Segment{
		{Start: 0, End: 0.3, Text: "we"},
		{Start: 0.35, End: 0.6, Text: "were"},
		{Start: 0.65, End: 0.9, Text: "late ."},
	}
	got := Shape(input, Options{})
	if len(got) != 1 {
		t.Fatalf("expected 1 merged segment, got %d: %+v", len(got), got)
	}
	if got[0].Text != "We were late." {
		t.Fatalf("merged text = %q", got[0].Text)
	}
}

func TestShapeRespectsMergeGap(t *testing.T) {
	input := []segment.Segment{
		{Start: 0, End: 0.4, Text: "Hi"},
		{Start: 2.0, End: 2.4, Text: "there"},
	}
	got := Shape(input, Options{})
	if len(got) != 2 {
		t.Fatalf("segments across a long gap should not merge: %+v", got)
	}
}

func TestShapeRespectsMergeLength(t *testing.T) {
	long := strings.Repeat("a", 60)
	input := []segment.Segment{
		{Start: 0, End: 0.4, Text: long},
		{Start: 0.5, End: 0.9, Text: long},
	}
	got := Shape(input, Options{})
	if len(got) != 2 {
		t.Fatalf("merge should respect the combined length cap: %+v", got)
	}
}

func TestShapeSplitsLongText(t *testing.T) {
	words := strings.Repeat("word ", 40)
	input := []segment.Segment{{Start: 0, End: 8, Text: words}}
	got := Shape(input, Options{})
	if len(got) < 2 {
		t.Fatalf("expected split, got %+v", got)
	}
	total := 0.0
	for i, seg := range got {
		if len(seg.Text) > defaultSplitMaxChars {
			t.Fatalf("piece %d too long: %q", i, seg.Text)
		}
		if seg.End <= seg.Start {
			t.Fatalf("piece %d has inverted timing: %+v", i, seg)
		}
		if i > 0 && seg.Start < got[i-1].End-1e-9 {
			t.Fatalf("piece %d overlaps previous", i)
		}
		total += seg.Duration()
	}
	if total < 7.99 || total > 8.01 {
		t.Fatalf("split pieces should cover the original duration, got %v", total)
	}
}

func TestShapeKeepsOverlongWordWhole(t *testing.T) {
	word := strings.Repeat("X", 120)
	input := []segment.Segment{{Start: 0, End: 2, Text: word}}
	got := Shape(input, Options{})
	if len(got) != 1 {
		t.Fatalf("single overlong word should stay whole: %+v", got)
	}
	if got[0].Text != word {
		t.Fatalf("word was altered: %q", got[0].Text)
	}
}

func TestShapeDropsEmptyAndInvalid(t *testing.T) {
	input := []segment.Segment{
		{Start: 0, End: 1, Text: "   "},
		{Start: 3, End: 2, Text: "backwards"},
		{Start: 4, End: 6, Text: "kept here"},
	}
	got := Shape(input, Options{})
	if len(got) != 1 || got[0].Text != "Kept here" {
		t.Fatalf("got %+v", got)
	}
}

func TestShapeSortsByStart(t *testing.T) {
	input := []segment.Segment{
		{Start: 5, End: 7, Text: "second part of the talk"},
		{Start: 1, End: 3, Text: "first part of the talk"},
	}
	got := Shape(input, Options{})
	if len(got) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got[0].Start != 1 || got[1].Start != 5 {
		t.Fatalf("output not ordered: %+v", got)
	}
}

func TestShapeEmptyInput(t *testing.T) {
	if got := Shape(nil, Options{}); len(got) != 0 {
		t.Fatalf("expected empty output, got %+v", got)
	}
}
