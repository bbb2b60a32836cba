// Package runner drives one video through the pipeline stages and maps each
// stage's progress into the job's overall 0-100 range.
package runner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"scribe/internal/logging"
	"scribe/internal/stage"
)

// Stage progress bands within the overall job percentage. Submission sits at
// zero; the index commit closes the job at one hundred.
const (
	bandExtractStart    = 10.0
	bandExtractEnd      = 30.0
	bandTranscribeEnd   = 90.0
	bandShapeEnd        = 95.0
	bandComplete        = 100.0
	shapeHandoffPercent = 70.0
)

// Runner executes the extraction, transcription, and indexing stages for a
// single job.
type Runner struct {
	extractor stage.AudioExtraction
	engine    stage.SpeechToText
	indexer   stage.ShapeIndex
	workDir   string
	logger    *slog.Logger
}

// New assembles a runner over the three pipeline stages. Per-job scratch
// files live under workDir and are removed when the job finishes.
func New(extractor stage.AudioExtraction, engine stage.SpeechToText, indexer stage.ShapeIndex, workDir string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		extractor: extractor,
		engine:    engine,
		indexer:   indexer,
		workDir:   workDir,
		logger:    logger.With(logging.String(logging.FieldComponent, "runner")),
	}
}

// Run executes the pipeline for job, emitting a ProgressEvent on every
// update. The caller owns terminal state: Run returns the stage error, if
// any, and never emits a completion itself.
func (r *Runner) Run(ctx context.Context, job *Job, emit func(ProgressEvent)) error {
	jobDir := filepath.Join(r.workDir, job.ID)
	defer func() {
		if err := os.RemoveAll(jobDir); err != nil {
			r.logger.Warn("work dir cleanup failed", logging.String("dir", jobDir), logging.Error(err))
		}
	}()

	tracker := newTracker(job, emit)

	tracker.set(StateExtracting, bandExtractStart, "starting extraction")
	audioPath, err := r.extractor.Extract(ctx, job.VideoPath, jobDir,
		tracker.bandReporter(StateExtracting, bandExtractStart, bandExtractEnd))
	if err != nil {
		return err
	}

	raw, err := r.engine.Transcribe(ctx, audioPath,
		tracker.bandReporter(StateTranscribing, bandExtractEnd, bandTranscribeEnd))
	if err != nil {
		return err
	}

	if err := r.indexer.ShapeAndIndex(ctx, job.VideoPath, raw, tracker.shapeIndexReporter()); err != nil {
		return err
	}

	tracker.set(StateIndexing, bandComplete, "complete")
	return nil
}

// tracker serializes job progress updates and keeps the overall percentage
// monotonic.
type tracker struct {
	job  *Job
	emit func(ProgressEvent)
}

func newTracker(job *Job, emit func(ProgressEvent)) *tracker {
	if emit == nil {
		emit = func(ProgressEvent) {}
	}
	return &tracker{job: job, emit: emit}
}

func (t *tracker) set(state State, percent float64, message string) {
	if percent < t.job.Percent {
		percent = t.job.Percent
	}
	if percent > bandComplete {
		percent = bandComplete
	}
	t.job.State = state
	t.job.Percent = percent
	t.job.Message = message
	t.emit(ProgressEvent{
		JobID:     t.job.ID,
		VideoPath: t.job.VideoPath,
		State:     state,
		Percent:   percent,
		Message:   message,
	})
}

// bandReporter maps a stage-relative percentage (0-100) onto the [lo, hi]
// slice of the overall range.
func (t *tracker) bandReporter(state State, lo, hi float64) stage.Reporter {
	return func(percent float64, message string) {
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		t.set(state, lo+(hi-lo)*percent/100, message)
	}
}

// shapeIndexReporter covers the combined shape-and-index stage: shaping fills
// the band up to the handoff point, the index commit fills the rest.
func (t *tracker) shapeIndexReporter() stage.Reporter {
	return func(percent float64, message string) {
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		if percent < shapeHandoffPercent {
			scaled := bandTranscribeEnd + (bandShapeEnd-bandTranscribeEnd)*percent/shapeHandoffPercent
			t.set(StateShaping, scaled, message)
			return
		}
		scaled := bandShapeEnd + (bandComplete-bandShapeEnd)*(percent-shapeHandoffPercent)/(100-shapeHandoffPercent)
		t.set(StateIndexing, scaled, message)
	}
}
