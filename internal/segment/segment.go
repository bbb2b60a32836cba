package segment

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Segment is a time-bounded unit of transcribed text. Start is inclusive,
// End is exclusive, both in seconds from the beginning of the video.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// ErrInvalidTiming indicates a segment whose end does not follow its start.
var ErrInvalidTiming = errors.New("segment end must be greater than start")

// Validate checks timing sanity. Empty text is not an error here; callers
// filter empty segments where the engines hand them over.
func (s Segment) Validate() error {
	if s.End <= s.Start {
		return fmt.Errorf("%w: start=%.3f end=%.3f", ErrInvalidTiming, s.Start, s.End)
	}
	return nil
}

// SortByStart orders segments by start time in place, keeping the relative
// order of segments that share a start.
func SortByStart(segments []Segment) {
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})
}

// FilterEmpty returns the segments whose text is non-empty after trimming.
// Speech engines make no non-empty guarantee, so every consumer runs raw
// output through this before shaping or persisting.
func FilterEmpty(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		out = append(out, seg)
	}
	return out
}
