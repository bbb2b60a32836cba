package index

import "time"

// VideoRecord identifies an indexed video. Identity is the absolute path;
// a record exists only after its first successful index commit.
type VideoRecord struct {
	ID        int64
	Path      string
	Name      string
	Size      int64
	IndexedAt time.Time
}

// SearchHit is a query-time projection of a matching segment. Highlighted
// holds a bounded snippet with matched spans wrapped in <mark> tags; Text is
// the untouched segment text.
type SearchHit struct {
	Start       float64
	End         float64
	Text        string
	Highlighted string
	Rank        float64
}

// Stats summarizes store contents for diagnostics.
type Stats struct {
	VideoCount   int
	SegmentCount int
	StorageBytes int64
}
