package index

import (
	"context"
	"strings"

	"scribe/internal/logging"
	"scribe/internal/services"
)

const (
	snippetTokens  = 32
	defaultLimit   = 50
	markOpen       = "<mark>"
	markClose      = "</mark>"
	snippetEllipse = "…"
)

// Search runs a ranked full-text query over the video's segments.
// Multi-word queries match as an exact phrase; a single word matches as a
// prefix. A blank query returns no hits without touching storage.
func (s *Store) Search(ctx context.Context, path, query string, limit int) ([]SearchHit, error) {
	match := prepareMatchQuery(query)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT s.start_time, s.end_time, s.text,
                snippet(segments_fts, 0, ?, ?, ?, ?),
                segments_fts.rank
         FROM segments_fts
         JOIN segments s ON s.id = segments_fts.rowid
         JOIN videos v ON v.id = s.video_id
         WHERE v.path = ? AND segments_fts MATCH ?
         ORDER BY segments_fts.rank, s.start_time
         LIMIT ?`,
		markOpen, markClose, snippetEllipse, snippetTokens,
		path, match, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "index", "search", "query", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var hit SearchHit
		if err := rows.Scan(&hit.Start, &hit.End, &hit.Text, &hit.Highlighted, &hit.Rank); err != nil {
			return nil, services.Wrap(services.ErrStorage, "index", "search", "scan", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "index", "search", "iterate", err)
	}

	s.logger.Debug("search complete",
		logging.String(logging.FieldVideo, path),
		logging.String("query", query),
		logging.Int("hits", len(hits)))
	return hits, nil
}

// SearchAll runs the query across every indexed video, grouped by video path.
func (s *Store) SearchAll(ctx context.Context, query string, limit int) (map[string][]SearchHit, error) {
	match := prepareMatchQuery(query)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT v.path, s.start_time, s.end_time, s.text,
                snippet(segments_fts, 0, ?, ?, ?, ?),
                segments_fts.rank
         FROM segments_fts
         JOIN segments s ON s.id = segments_fts.rowid
         JOIN videos v ON v.id = s.video_id
         WHERE segments_fts MATCH ?
         ORDER BY segments_fts.rank, s.start_time
         LIMIT ?`,
		markOpen, markClose, snippetEllipse, snippetTokens,
		match, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "index", "search all", "query", err)
	}
	defer rows.Close()

	results := make(map[string][]SearchHit)
	for rows.Next() {
		var videoPath string
		var hit SearchHit
		if err := rows.Scan(&videoPath, &hit.Start, &hit.End, &hit.Text, &hit.Highlighted, &hit.Rank); err != nil {
			return nil, services.Wrap(services.ErrStorage, "index", "search all", "scan", err)
		}
		results[videoPath] = append(results[videoPath], hit)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "index", "search all", "iterate", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results, nil
}

// prepareMatchQuery converts free text into an FTS5 MATCH expression. Quoting
// keeps user input from being parsed as FTS syntax: multiple words become one
// exact phrase, a single word becomes a prefix term.
func prepareMatchQuery(query string) string {
	words := strings.Fields(query)
	if len(words) == 0 {
		return ""
	}
	escaped := strings.ReplaceAll(strings.Join(words, " "), `"`, `""`)
	if len(words) > 1 {
		return `"` + escaped + `"`
	}
	return `"` + escaped + `"*`
}
