// Package scheduler fans videos out to pipeline workers. It deduplicates
// submissions, short-circuits videos that are already indexed, bounds
// concurrency, and publishes progress and completion events on typed channels.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"scribe/internal/index"
	"scribe/internal/logging"
	"scribe/internal/runner"
)

const (
	progressBuffer   = 256
	completionBuffer = 64
)

// Scheduler owns the worker pool for pipeline jobs.
type Scheduler struct {
	runner *runner.Runner
	store  *index.Store
	logger *slog.Logger
	sem    chan struct{}

	mu     sync.Mutex
	active map[string]*activeJob

	wg          sync.WaitGroup
	progress    chan runner.ProgressEvent
	completions chan runner.CompletionEvent
	closeOnce   sync.Once
}

type activeJob struct {
	job    *runner.Job
	cancel context.CancelFunc
}

// New creates a scheduler running at most maxConcurrent jobs at once.
func New(r *runner.Runner, store *index.Store, maxConcurrent int, logger *slog.Logger) *Scheduler {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		runner:      r,
		store:       store,
		logger:      logger.With(logging.String(logging.FieldComponent, "scheduler")),
		sem:         make(chan struct{}, maxConcurrent),
		active:      make(map[string]*activeJob),
		progress:    make(chan runner.ProgressEvent, progressBuffer),
		completions: make(chan runner.CompletionEvent, completionBuffer),
	}
}

// Progress streams job progress updates. The channel closes after Wait.
func (s *Scheduler) Progress() <-chan runner.ProgressEvent {
	return s.progress
}

// Completions streams exactly one terminal event per accepted job. The
// channel closes after Wait.
func (s *Scheduler) Completions() <-chan runner.CompletionEvent {
	return s.completions
}

// Submit queues videoPath for processing. A path that is already indexed
// short-circuits to a synthetic done completion without running any stage,
// unless force is set. Submitting a path that is already being processed
// returns false.
func (s *Scheduler) Submit(videoPath string, force bool) (*runner.Job, bool) {
	if !force && s.store != nil && s.store.IsIndexed(context.Background(), videoPath) {
		return s.completeFromIndex(videoPath), true
	}

	s.mu.Lock()
	if _, exists := s.active[videoPath]; exists {
		s.mu.Unlock()
		s.logger.Info("already queued, skipping", logging.String(logging.FieldVideo, videoPath))
		return nil, false
	}

	job := runner.NewJob(videoPath)
	ctx, cancel := context.WithCancel(context.Background())
	s.active[videoPath] = &activeJob{job: job, cancel: cancel}
	s.wg.Add(1)
	s.mu.Unlock()

	s.emitProgress(runner.ProgressEvent{
		JobID:     job.ID,
		VideoPath: videoPath,
		State:     runner.StateQueued,
		Message:   "queued",
	})
	go s.execute(ctx, job)
	return job, true
}

// completeFromIndex reports a cache hit: the video is already in the store,
// so its job goes straight to done without touching any stage.
func (s *Scheduler) completeFromIndex(videoPath string) *runner.Job {
	job := runner.NewJob(videoPath)
	now := time.Now()
	job.State = runner.StateDone
	job.Percent = 100
	job.Message = "already indexed"
	job.StartedAt = now
	job.FinishedAt = now

	s.logger.Info("already indexed",
		logging.String(logging.FieldVideo, videoPath),
		logging.String(logging.FieldJobID, job.ID))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.emitProgress(runner.ProgressEvent{
			JobID:     job.ID,
			VideoPath: videoPath,
			State:     runner.StateDone,
			Percent:   100,
			Message:   "already indexed",
		})
		s.completions <- runner.CompletionEvent{
			JobID:     job.ID,
			VideoPath: videoPath,
			State:     runner.StateDone,
		}
	}()
	return job
}

// Cancel aborts the active job for videoPath. It reports whether a job was
// found; the job still emits its terminal event.
func (s *Scheduler) Cancel(videoPath string) bool {
	s.mu.Lock()
	aj, ok := s.active[videoPath]
	s.mu.Unlock()
	if !ok {
		return false
	}
	aj.cancel()
	return true
}

// Wait blocks until every accepted job has finished, then closes the event
// channels.
func (s *Scheduler) Wait() {
	s.wg.Wait()
	s.closeOnce.Do(func() {
		close(s.progress)
		close(s.completions)
	})
}

func (s *Scheduler) execute(ctx context.Context, job *runner.Job) {
	defer s.wg.Done()

	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	job.StartedAt = time.Now()
	var err error
	if ctx.Err() != nil {
		err = ctx.Err()
	} else {
		err = s.runner.Run(ctx, job, s.emitProgress)
	}
	job.FinishedAt = time.Now()
	job.Err = err

	switch {
	case err == nil:
		job.State = runner.StateDone
		job.Percent = 100
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		job.State = runner.StateCancelled
	default:
		job.State = runner.StateFailed
	}

	s.mu.Lock()
	delete(s.active, job.VideoPath)
	s.mu.Unlock()

	if err != nil && job.State == runner.StateFailed {
		s.logger.Error("job failed",
			logging.String(logging.FieldVideo, job.VideoPath),
			logging.Error(err))
	}

	s.completions <- runner.CompletionEvent{
		JobID:     job.ID,
		VideoPath: job.VideoPath,
		State:     job.State,
		Err:       err,
		Duration:  job.FinishedAt.Sub(job.StartedAt),
	}
}

// emitProgress never blocks a worker; updates are dropped when the consumer
// lags past the buffer.
func (s *Scheduler) emitProgress(ev runner.ProgressEvent) {
	select {
	case s.progress <- ev:
	default:
	}
}
