// Package stage defines the contracts between the pipeline runner and the
// per-stage services that do the actual work.
package stage

import (
	"context"

	"scribe/internal/segment"
)

// Reporter receives progress updates from a running stage. Percent is scoped
// to the stage (0-100); the runner maps it into the job's overall band.
type Reporter func(percent float64, message string)

// NopReporter discards progress updates.
func NopReporter(float64, string) {}

// AudioExtraction pulls a normalized audio track out of a video container.
type AudioExtraction interface {
	// Extract writes mono 16 kHz PCM audio for videoPath into workDir and
	// returns the audio file path.
	Extract(ctx context.Context, videoPath, workDir string, report Reporter) (string, error)
	HealthCheck(ctx context.Context) Health
}

// SpeechToText converts an audio file into raw time-stamped segments.
type SpeechToText interface {
	Transcribe(ctx context.Context, audioPath string, report Reporter) ([]segment.Segment, error)
	HealthCheck(ctx context.Context) Health
}

// ShapeIndex turns raw segments into their final shaped form and commits
// them to the search index, emitting side outputs such as subtitle files.
type ShapeIndex interface {
	ShapeAndIndex(ctx context.Context, videoPath string, raw []segment.Segment, report Reporter) error
	HealthCheck(ctx context.Context) Health
}
