package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"scribe/internal/segment"
	"scribe/internal/stage"
)

type fakeExtractor struct {
	percents []float64
	err      error
	sawDir   string
}

func (f *fakeExtractor) Extract(ctx context.Context, videoPath, workDir string, report stage.Reporter) (string, error) {
	f.sawDir = workDir
	if f.err != nil {
		return "", f.err
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", err
	}
	for _, p := range f.percents {
		report(p, "extracting")
	}
	audioPath := filepath.Join(workDir, "audio.wav")
	return audioPath, os.WriteFile(audioPath, []byte("RIFF"), 0o644)
}

func (f *fakeExtractor) HealthCheck(context.Context) stage.Health { return stage.Healthy("extract") }

type fakeEngine struct {
	percents []float64
	err      error
}

func (f *fakeEngine) Transcribe(ctx context.Context, audioPath string, report stage.Reporter) ([]segment.Segment, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.percents {
		report(p, "transcribing")
	}
	return []segment.Segment{{Start: 0, End: 1, Text: "hello"}}, nil
}

func (f *fakeEngine) HealthCheck(context.Context) stage.Health { return stage.Healthy("engine") }

type fakeIndexer struct {
	percents []float64
	err      error
}

func (f *fakeIndexer) ShapeAndIndex(ctx context.Context, videoPath string, raw []segment.Segment, report stage.Reporter) error {
	if f.err != nil {
		return f.err
	}
	for _, p := range f.percents {
		report(p, "finishing")
	}
	return nil
}

func (f *fakeIndexer) HealthCheck(context.Context) stage.Health { return stage.Healthy("index") }

func stagePercents() []float64 { return []float64{0, 50, 100} }

func newTestRunner(t *testing.T, ex *fakeExtractor, en *fakeEngine, ix *fakeIndexer) *Runner {
	t.Helper()
	return New(ex, en, ix, t.TempDir(), nil)
}

func TestRunEmitsMonotonicBandedProgress(t *testing.T) {
	r := newTestRunner(t,
		&fakeExtractor{percents: stagePercents()},
		&fakeEngine{percents: stagePercents()},
		&fakeIndexer{percents: stagePercents()})
	job := NewJob("/videos/a.mp4")

	var events []ProgressEvent
	err := r.Run(context.Background(), job, func(ev ProgressEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(events) == 0 {
		t.Fatal("no progress events")
	}
	for i := 1; i < len(events); i++ {
		if events[i].Percent < events[i-1].Percent {
			t.Fatalf("progress decreased at %d: %v -> %v", i, events[i-1].Percent, events[i].Percent)
		}
	}
	last := events[len(events)-1]
	if last.Percent != 100 {
		t.Fatalf("final percent = %v", last.Percent)
	}
	if job.Percent != 100 {
		t.Fatalf("job percent = %v", job.Percent)
	}
}

func TestRunBandMapping(t *testing.T) {
	r := newTestRunner(t,
		&fakeExtractor{percents: stagePercents()},
		&fakeEngine{percents: stagePercents()},
		&fakeIndexer{percents: stagePercents()})
	job := NewJob("/videos/a.mp4")

	byState := map[State][]float64{}
	err := r.Run(context.Background(), job, func(ev ProgressEvent) {
		byState[ev.State] = append(byState[ev.State], ev.Percent)
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	extract := byState[StateExtracting]
	if extract[len(extract)-1] != 30 {
		t.Fatalf("extraction should end at 30, got %v", extract)
	}
	for _, p := range extract {
		if p < 10 || p > 30 {
			t.Fatalf("extraction percent %v outside band", p)
		}
	}
	transcribe := byState[StateTranscribing]
	for _, p := range transcribe {
		if p < 30 || p > 90 {
			t.Fatalf("transcription percent %v outside band", p)
		}
	}
	if transcribe[len(transcribe)-1] != 90 {
		t.Fatalf("transcription should end at 90, got %v", transcribe)
	}
	for _, p := range byState[StateShaping] {
		if p < 90 || p > 95 {
			t.Fatalf("shaping percent %v outside band", p)
		}
	}
	indexing := byState[StateIndexing]
	if indexing[len(indexing)-1] != 100 {
		t.Fatalf("indexing should end at 100, got %v", indexing)
	}
}

func TestRunStateOrder(t *testing.T) {
	r := newTestRunner(t,
		&fakeExtractor{percents: stagePercents()},
		&fakeEngine{percents: stagePercents()},
		&fakeIndexer{percents: stagePercents()})
	job := NewJob("/videos/a.mp4")

	order := map[State]int{
		StateExtracting:   0,
		StateTranscribing: 1,
		StateShaping:      2,
		StateIndexing:     3,
	}
	lastRank := -1
	err := r.Run(context.Background(), job, func(ev ProgressEvent) {
		rank, ok := order[ev.State]
		if !ok {
			t.Fatalf("unexpected state %q", ev.State)
		}
		if rank < lastRank {
			t.Fatalf("state went backwards to %q", ev.State)
		}
		lastRank = rank
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunPropagatesStageError(t *testing.T) {
	stageErr := errors.New("engine exploded")
	r := newTestRunner(t,
		&fakeExtractor{percents: stagePercents()},
		&fakeEngine{err: stageErr},
		&fakeIndexer{})
	job := NewJob("/videos/a.mp4")

	err := r.Run(context.Background(), job, nil)
	if !errors.Is(err, stageErr) {
		t.Fatalf("expected stage error, got %v", err)
	}
	if job.Percent >= 100 {
		t.Fatalf("failed job should not reach 100, got %v", job.Percent)
	}
}

func TestRunCleansWorkDir(t *testing.T) {
	ex := &fakeExtractor{percents: stagePercents()}
	r := newTestRunner(t, ex, &fakeEngine{percents: stagePercents()}, &fakeIndexer{})
	job := NewJob("/videos/a.mp4")

	if err := r.Run(context.Background(), job, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if ex.sawDir == "" {
		t.Fatal("extractor never received a work dir")
	}
	if _, err := os.Stat(ex.sawDir); !os.IsNotExist(err) {
		t.Fatalf("job work dir should be removed, stat err = %v", err)
	}
}

func TestStateTerminal(t *testing.T) {
	for _, s := range []State{StateDone, StateFailed, StateCancelled} {
		if !s.Terminal() {
			t.Fatalf("%q should be terminal", s)
		}
	}
	for _, s := range []State{StateQueued, StateExtracting, StateTranscribing, StateShaping, StateIndexing} {
		if s.Terminal() {
			t.Fatalf("%q should not be terminal", s)
		}
	}
}

func TestNewJobDefaults(t *testing.T) {
	job := NewJob("/videos/a.mp4")
	if job.ID == "" {
		t.Fatal("job ID missing")
	}
	if job.State != StateQueued {
		t.Fatalf("state = %q", job.State)
	}
	other := NewJob("/videos/a.mp4")
	if other.ID == job.ID {
		t.Fatal("job IDs should be unique")
	}
}
