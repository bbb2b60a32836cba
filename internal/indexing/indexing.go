// Package indexing is the final pipeline stage: it shapes raw transcript
// segments, writes optional subtitle files, and commits the result to the
// search index.
package indexing

import (
	"context"
	"log/slog"

	"scribe/internal/config"
	"scribe/internal/index"
	"scribe/internal/logging"
	"scribe/internal/segment"
	"scribe/internal/services"
	"scribe/internal/shaper"
	"scribe/internal/stage"
	"scribe/internal/subtitles"
)

// Service shapes and indexes transcripts.
type Service struct {
	cfg    *config.Config
	store  *index.Store
	logger *slog.Logger
}

// NewService creates the shape-and-index stage.
func NewService(cfg *config.Config, store *index.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		cfg:    cfg,
		store:  store,
		logger: logger.With(logging.String(logging.FieldComponent, "indexing")),
	}
}

// ShapeAndIndex runs the shaper over raw segments, emits subtitle files when
// enabled, and commits the shaped transcript for videoPath. An empty
// transcript still commits so the video is marked as processed.
func (s *Service) ShapeAndIndex(ctx context.Context, videoPath string, raw []segment.Segment, report stage.Reporter) error {
	if report == nil {
		report = stage.NopReporter
	}

	report(0, "shaping segments")
	shaped := shaper.Shape(raw, shaper.Options{
		MinDuration:   s.cfg.Shaper.MinDuration,
		MergeMaxChars: s.cfg.Shaper.MergeMaxChars,
		MaxGap:        s.cfg.Shaper.MaxGap,
		SplitMaxChars: s.cfg.Shaper.SplitMaxChars,
		MaxDuration:   s.cfg.Shaper.MaxDuration,
	})

	if s.cfg.Subtitles.Enabled {
		report(40, "generating subtitles")
		s.writeSubtitles(videoPath, shaped)
	}

	report(70, "indexing")
	if _, err := s.store.UpsertVideo(ctx, videoPath, shaped); err != nil {
		return err
	}
	report(100, "indexed")
	return nil
}

// writeSubtitles emits one file per configured format. Subtitle output is a
// side effect of indexing; failures are logged and do not fail the job.
func (s *Service) writeSubtitles(videoPath string, shaped []segment.Segment) {
	if len(shaped) == 0 {
		s.logger.Warn("no cues to write, skipping subtitles",
			logging.String(logging.FieldVideo, videoPath))
		return
	}
	for _, name := range s.cfg.Subtitles.Formats {
		format, err := subtitles.ParseFormat(name)
		if err != nil {
			s.logger.Warn("skipping subtitle format", logging.String("format", name), logging.Error(err))
			continue
		}
		path, err := subtitles.Generate(shaped, videoPath, format)
		if err != nil {
			s.logger.Warn("subtitle generation failed",
				logging.String(logging.FieldVideo, videoPath),
				logging.String("format", name),
				logging.Error(err))
			continue
		}
		s.logger.Info("subtitles written", logging.String("path", path))
	}
}

// HealthCheck reports whether the index store accepts queries.
func (s *Service) HealthCheck(ctx context.Context) stage.Health {
	const name = "indexing"
	if s.store == nil {
		return stage.Unhealthy(name, "store not configured")
	}
	if _, err := s.store.Stats(ctx); err != nil {
		return stage.Unhealthy(name, services.Message(err))
	}
	return stage.Healthy(name)
}
