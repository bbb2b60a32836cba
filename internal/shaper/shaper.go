// Package shaper reworks raw engine segments into subtitle-friendly cues:
// fragments too short to read are merged with their neighbors, and cues too
// long to display are split on word boundaries with timing spread evenly.
package shaper

import (
	"strings"
	"unicode"

	"scribe/internal/segment"
)

// Options bound the merge and split passes. Zero values fall back to the
// package defaults.
type Options struct {
	MinDuration   float64 // merge segments shorter than this
	MergeMaxChars int     // never merge past this combined length
	MaxGap        float64 // never merge across a silence longer than this
	SplitMaxChars int     // split segments longer than this
	MaxDuration   float64 // split segments longer than this
}

const (
	defaultMinDuration   = 1.0
	defaultMergeMaxChars = 100
	defaultMaxGap        = 1.0
	defaultSplitMaxChars = 80
	defaultMaxDuration   = 6.0
)

func (o Options) withDefaults() Options {
	if o.MinDuration <= 0 {
		o.MinDuration = defaultMinDuration
	}
	if o.MergeMaxChars <= 0 {
		o.MergeMaxChars = defaultMergeMaxChars
	}
	if o.MaxGap <= 0 {
		o.MaxGap = defaultMaxGap
	}
	if o.SplitMaxChars <= 0 {
		o.SplitMaxChars = defaultSplitMaxChars
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = defaultMaxDuration
	}
	return o
}

// Shape merges, cleans, and splits segments. Input order is preserved by
// start time and the output never contains empty text or inverted timings.
// Cleanup runs after the merge pass so a merged cue capitalizes only its
// first word.
func Shape(segments []segment.Segment, opts Options) []segment.Segment {
	opts = opts.withDefaults()

	kept := make([]segment.Segment, 0, len(segments))
	for _, seg := range segments {
		seg.Text = strings.Join(strings.Fields(seg.Text), " ")
		if seg.Text == "" || seg.End <= seg.Start {
			continue
		}
		kept = append(kept, seg)
	}
	segment.SortByStart(kept)

	merged := mergeShort(kept, opts)
	for i := range merged {
		merged[i].Text = CleanText(merged[i].Text)
	}
	return splitLong(merged, opts)
}

// CleanText normalizes whitespace, removes space before closing punctuation,
// and capitalizes the first letter.
func CleanText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return ""
	}
	for _, punct := range []string{".", ",", "?", "!"} {
		text = strings.ReplaceAll(text, " "+punct, punct)
	}
	runes := []rune(text)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// mergeShort folds segments shorter than MinDuration into the following
// segment when the gap is small and the combined text stays readable.
func mergeShort(segments []segment.Segment, opts Options) []segment.Segment {
	if len(segments) == 0 {
		return nil
	}

	result := make([]segment.Segment, 0, len(segments))
	current := segments[0]
	for _, next := range segments[1:] {
		gap := next.Start - current.End
		combinedLen := len(current.Text) + len(next.Text)
		if current.Duration() < opts.MinDuration &&
			combinedLen <= opts.MergeMaxChars &&
			gap <= opts.MaxGap {
			current.Text = current.Text + " " + next.Text
			current.End = next.End
			continue
		}
		result = append(result, current)
		current = next
	}
	return append(result, current)
}

// splitLong breaks oversized segments into word-wrapped pieces with the
// original duration divided evenly among them.
func splitLong(segments []segment.Segment, opts Options) []segment.Segment {
	result := make([]segment.Segment, 0, len(segments))
	for _, seg := range segments {
		if len(seg.Text) <= opts.SplitMaxChars && seg.Duration() <= opts.MaxDuration {
			result = append(result, seg)
			continue
		}

		lines := wrapWords(seg.Text, opts.SplitMaxChars)
		if len(lines) == 1 {
			result = append(result, seg)
			continue
		}
		share := seg.Duration() / float64(len(lines))
		for i, line := range lines {
			result = append(result, segment.Segment{
				Start: seg.Start + float64(i)*share,
				End:   seg.Start + float64(i+1)*share,
				Text:  line,
			})
		}
	}
	return result
}

// wrapWords greedily packs words into lines of at most maxChars. A single
// word longer than the limit stays on its own line unbroken.
func wrapWords(text string, maxChars int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) <= maxChars {
			line = line + " " + word
			continue
		}
		lines = append(lines, line)
		line = word
	}
	return append(lines, line)
}
