package runner

import (
	"time"

	"github.com/google/uuid"
)

// State identifies where a job is in its lifecycle.
type State string

const (
	StateQueued       State = "queued"
	StateExtracting   State = "extracting"
	StateTranscribing State = "transcribing"
	StateShaping      State = "shaping"
	StateIndexing     State = "indexing"
	StateDone         State = "done"
	StateFailed       State = "failed"
	StateCancelled    State = "cancelled"
)

// Terminal reports whether the state ends the job.
func (s State) Terminal() bool {
	switch s {
	case StateDone, StateFailed, StateCancelled:
		return true
	}
	return false
}

// Job tracks one video through the pipeline.
type Job struct {
	ID          string
	VideoPath   string
	State       State
	Percent     float64
	Message     string
	Err         error
	SubmittedAt time.Time
	StartedAt   time.Time
	FinishedAt  time.Time
}

// NewJob creates a queued job for videoPath.
func NewJob(videoPath string) *Job {
	return &Job{
		ID:          uuid.NewString(),
		VideoPath:   videoPath,
		State:       StateQueued,
		SubmittedAt: time.Now(),
	}
}

// ProgressEvent is emitted on every state or percent change.
type ProgressEvent struct {
	JobID     string
	VideoPath string
	State     State
	Percent   float64
	Message   string
}

// CompletionEvent is emitted exactly once per job when it reaches a terminal
// state.
type CompletionEvent struct {
	JobID     string
	VideoPath string
	State     State
	Err       error
	Duration  time.Duration
}
