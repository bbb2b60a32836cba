package index

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	xlanguage "golang.org/x/text/language"
	_ "modernc.org/sqlite"

	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/segment"
	"scribe/internal/services"
)

// Store manages transcript persistence backed by SQLite FTS5.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open initializes or connects to the transcript database.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "index", "open", "ensure directories", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "index", "open", "open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrStorage, "index", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{db: db, path: dbPath, logger: logger.With(logging.String(logging.FieldComponent, "index"))}
	if err := ensureSchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// UpsertVideo replaces all indexed segments for the video at path in a single
// transaction. Re-indexing the same path never duplicates rows; a failed
// replacement leaves the previous index contents untouched.
func (s *Store) UpsertVideo(ctx context.Context, path string, segments []segment.Segment) (*VideoRecord, error) {
	for _, seg := range segments {
		if err := seg.Validate(); err != nil {
			return nil, services.Wrap(services.ErrValidation, "index", "upsert video",
				fmt.Sprintf("segment at %.3fs", seg.Start), err)
		}
	}
	segments = segment.FilterEmpty(segments)

	now := time.Now().UTC()
	record := &VideoRecord{
		Path:      path,
		Name:      displayName(path),
		Size:      fileSize(path),
		IndexedAt: now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "index", "upsert video", "begin transaction", err)
	}
	defer tx.Rollback()

	if err := deleteVideoTx(ctx, tx, path); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO videos (path, name, size, indexed_at) VALUES (?, ?, ?, ?)`,
		path, record.Name, record.Size, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "index", "upsert video", "insert video", err)
	}
	videoID, err := res.LastInsertId()
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "index", "upsert video", "last insert id", err)
	}
	record.ID = videoID

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO segments (video_id, start_time, end_time, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "index", "upsert video", "prepare segment insert", err)
	}
	defer stmt.Close()

	for _, seg := range segments {
		if _, err := stmt.ExecContext(ctx, videoID, seg.Start, seg.End, seg.Text); err != nil {
			return nil, services.Wrap(services.ErrStorage, "index", "upsert video", "insert segment", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "index", "upsert video", "commit", err)
	}

	s.logger.Info("indexed video",
		logging.String(logging.FieldVideo, path),
		logging.Int("segments", len(segments)))
	return record, nil
}

// RemoveVideo deletes the video and all of its segments. Removing a path that
// was never indexed is a no-op.
func (s *Store) RemoveVideo(ctx context.Context, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return services.Wrap(services.ErrStorage, "index", "remove video", "begin transaction", err)
	}
	defer tx.Rollback()

	if err := deleteVideoTx(ctx, tx, path); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return services.Wrap(services.ErrStorage, "index", "remove video", "commit", err)
	}
	return nil
}

func deleteVideoTx(ctx context.Context, tx *sql.Tx, path string) error {
	var videoID int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM videos WHERE path = ?`, path).Scan(&videoID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return services.Wrap(services.ErrStorage, "index", "delete video", "lookup video", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE video_id = ?`, videoID); err != nil {
		return services.Wrap(services.ErrStorage, "index", "delete video", "delete segments", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, videoID); err != nil {
		return services.Wrap(services.ErrStorage, "index", "delete video", "delete video row", err)
	}
	return nil
}

// GetVideo returns the indexed record for path, or ErrNotFound.
func (s *Store) GetVideo(ctx context.Context, path string) (*VideoRecord, error) {
	record := &VideoRecord{}
	var indexedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, path, name, size, indexed_at FROM videos WHERE path = ?`, path,
	).Scan(&record.ID, &record.Path, &record.Name, &record.Size, &indexedAt)
	if err == sql.ErrNoRows {
		return nil, services.Wrap(services.ErrNotFound, "index", "get video", path, nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "index", "get video", path, err)
	}
	if parsed, parseErr := time.Parse(time.RFC3339Nano, indexedAt); parseErr == nil {
		record.IndexedAt = parsed
	}
	return record, nil
}

// IsIndexed reports whether path has a committed index. Storage errors on this
// read path degrade to false so callers simply re-run the pipeline.
func (s *Store) IsIndexed(ctx context.Context, path string) bool {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos WHERE path = ?`, path).Scan(&count)
	if err != nil {
		s.logger.Warn("index lookup failed", logging.String(logging.FieldVideo, path), logging.Error(err))
		return false
	}
	return count > 0
}

// Videos lists all indexed videos ordered by name.
func (s *Store) Videos(ctx context.Context) ([]VideoRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, name, size, indexed_at FROM videos ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "index", "list videos", "query", err)
	}
	defer rows.Close()

	var records []VideoRecord
	for rows.Next() {
		var record VideoRecord
		var indexedAt string
		if err := rows.Scan(&record.ID, &record.Path, &record.Name, &record.Size, &indexedAt); err != nil {
			return nil, services.Wrap(services.ErrStorage, "index", "list videos", "scan", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, indexedAt); parseErr == nil {
			record.IndexedAt = parsed
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "index", "list videos", "iterate", err)
	}
	return records, nil
}

// AllSegments returns every segment for the video ordered by start time. Read
// failures are logged and reported as an empty transcript rather than an
// error.
func (s *Store) AllSegments(ctx context.Context, path string) []segment.Segment {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.start_time, s.end_time, s.text
         FROM segments s
         JOIN videos v ON v.id = s.video_id
         WHERE v.path = ?
         ORDER BY s.start_time`, path)
	if err != nil {
		s.logger.Warn("segment read failed", logging.String(logging.FieldVideo, path), logging.Error(err))
		return nil
	}
	defer rows.Close()

	var segments []segment.Segment
	for rows.Next() {
		var seg segment.Segment
		if err := rows.Scan(&seg.Start, &seg.End, &seg.Text); err != nil {
			s.logger.Warn("segment scan failed", logging.String(logging.FieldVideo, path), logging.Error(err))
			return nil
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn("segment read failed", logging.String(logging.FieldVideo, path), logging.Error(err))
		return nil
	}
	return segments
}

// Stats reports store totals for diagnostics.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`).Scan(&stats.VideoCount); err != nil {
		return Stats{}, services.Wrap(services.ErrStorage, "index", "stats", "count videos", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM segments`).Scan(&stats.SegmentCount); err != nil {
		return Stats{}, services.Wrap(services.ErrStorage, "index", "stats", "count segments", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		stats.StorageBytes = info.Size()
	}
	return stats, nil
}

// Optimize rebuilds the full-text projection from the base table and compacts
// the database file.
func (s *Store) Optimize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `INSERT INTO segments_fts(segments_fts) VALUES ('rebuild')`); err != nil {
		return services.Wrap(services.ErrStorage, "index", "optimize", "rebuild fts", err)
	}
	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return services.Wrap(services.ErrStorage, "index", "optimize", "vacuum", err)
	}
	s.logger.Info("store optimized")
	return nil
}

var titleCaser = cases.Title(xlanguage.English)

func displayName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", ".", " ", "-", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return filepath.Base(path)
	}
	return titleCaser.String(base)
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
