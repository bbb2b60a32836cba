package transcription

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/config"
	"scribe/internal/services"
	"scribe/internal/stage"
)

const engineOutput = `{
  "segments": [
    {"start": 0.0, "end": 2.1, "text": "  Hello everyone.  "},
    {"start": 2.1, "end": 4.0, "text": "   "},
    {"start": 4.0, "end": 6.5, "text": "Welcome to the chanel."}
  ]
}`

func writeAudioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movie.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// fakeEngine writes the canned JSON where the service expects it.
func fakeEngine(t *testing.T, payload string) func(ctx context.Context, name string, args ...string) error {
	t.Helper()
	return func(ctx context.Context, name string, args ...string) error {
		audioPath := args[0]
		base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
		jsonPath := filepath.Join(filepath.Dir(audioPath), base+".json")
		return os.WriteFile(jsonPath, []byte(payload), 0o644)
	}
}

func TestTranscribeParsesSegments(t *testing.T) {
	svc := NewService(config.Transcription{Binary: "whisperx", Model: "base"}, nil)
	svc.WithCommandRunner(fakeEngine(t, engineOutput))

	segments, err := svc.Transcribe(context.Background(), writeAudioFixture(t), nil)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2 (empty dropped)", len(segments))
	}
	if segments[0].Text != "Hello everyone." {
		t.Fatalf("text not trimmed: %q", segments[0].Text)
	}
	if segments[1].Start != 4.0 || segments[1].End != 6.5 {
		t.Fatalf("timing = %v-%v", segments[1].Start, segments[1].End)
	}
}

func TestTranscribeBuildsArgs(t *testing.T) {
	svc := NewService(config.Transcription{
		Binary:   "whisperx",
		Model:    "large-v2",
		Language: "english",
		CUDA:     true,
	}, nil)

	var gotArgs []string
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = args
		return fakeEngine(t, engineOutput)(ctx, name, args...)
	})

	if _, err := svc.Transcribe(context.Background(), writeAudioFixture(t), nil); err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"--model large-v2", "--output_format json", "--language en", "--device cuda"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args missing %q: %v", want, gotArgs)
		}
	}
}

func TestTranscribeAppliesReplacements(t *testing.T) {
	svc := NewService(config.Transcription{
		Binary:   "whisperx",
		Model:    "base",
		Language: "en",
		Replacements: map[string]map[string]string{
			"en": {"chanel": "channel"},
		},
	}, nil)
	svc.WithCommandRunner(fakeEngine(t, engineOutput))

	segments, err := svc.Transcribe(context.Background(), writeAudioFixture(t), nil)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if segments[1].Text != "Welcome to the channel." {
		t.Fatalf("replacement not applied: %q", segments[1].Text)
	}
}

func TestTranscribeMissingAudio(t *testing.T) {
	svc := NewService(config.Transcription{Binary: "whisperx"}, nil)
	_, err := svc.Transcribe(context.Background(), "/nonexistent/audio.wav", nil)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTranscribeEngineFailure(t *testing.T) {
	svc := NewService(config.Transcription{Binary: "whisperx"}, nil)
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return errors.New("cuda out of memory")
	})
	_, err := svc.Transcribe(context.Background(), writeAudioFixture(t), nil)
	if !errors.Is(err, services.ErrStageFailure) {
		t.Fatalf("expected stage failure, got %v", err)
	}
}

func TestTranscribeNoOutputFile(t *testing.T) {
	svc := NewService(config.Transcription{Binary: "whisperx"}, nil)
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return nil
	})
	_, err := svc.Transcribe(context.Background(), writeAudioFixture(t), nil)
	if !errors.Is(err, services.ErrStageFailure) {
		t.Fatalf("expected stage failure for missing output, got %v", err)
	}
}

func TestTranscribeMalformedOutput(t *testing.T) {
	svc := NewService(config.Transcription{Binary: "whisperx"}, nil)
	svc.WithCommandRunner(fakeEngine(t, "{not json"))
	_, err := svc.Transcribe(context.Background(), writeAudioFixture(t), nil)
	if !errors.Is(err, services.ErrStageFailure) {
		t.Fatalf("expected stage failure for malformed output, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	svc := NewService(config.Transcription{Binary: "definitely-not-whisperx-xyz"}, nil)
	if health := svc.HealthCheck(context.Background()); health.Ready {
		t.Fatal("missing binary reported healthy")
	}
}

var _ stage.SpeechToText = (*Service)(nil)
