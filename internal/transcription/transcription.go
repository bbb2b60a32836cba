// Package transcription wraps the WhisperX command-line engine and turns its
// JSON output into time-stamped transcript segments.
package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"scribe/internal/config"
	"scribe/internal/language"
	"scribe/internal/logging"
	"scribe/internal/segment"
	"scribe/internal/services"
	"scribe/internal/stage"
)

// Service transcribes audio files with WhisperX.
type Service struct {
	cfg           config.Transcription
	logger        *slog.Logger
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a transcription service from configuration.
func NewService(cfg config.Transcription, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		cfg:    cfg,
		logger: logger.With(logging.String(logging.FieldComponent, "transcription")),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Transcribe runs the engine on audioPath and returns its segments with
// whitespace trimmed, empties dropped, and configured text replacements
// applied. Output files land next to the audio file.
func (s *Service) Transcribe(ctx context.Context, audioPath string, report stage.Reporter) ([]segment.Segment, error) {
	if report == nil {
		report = stage.NopReporter
	}
	if _, err := os.Stat(audioPath); err != nil {
		return nil, services.Wrap(services.ErrNotFound, "transcription", "transcribe", audioPath, err)
	}

	outputDir := filepath.Dir(audioPath)
	report(0, "transcribing audio")

	args := s.buildArgs(audioPath, outputDir)
	if err := s.run(ctx, s.cfg.Binary, args...); err != nil {
		if isBinaryMissing(err) {
			return nil, services.Wrap(services.ErrEngineUnavailable, "transcription", "transcribe",
				fmt.Sprintf("engine binary %q not found", s.cfg.Binary), err)
		}
		return nil, services.Wrap(services.ErrStageFailure, "transcription", "transcribe", "engine", err)
	}
	report(80, "parsing engine output")

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outputDir, base+".json")
	segments, err := loadSegments(jsonPath)
	if err != nil {
		return nil, err
	}
	segments = s.applyReplacements(segments)

	report(100, "transcription complete")
	s.logger.Info("transcription complete",
		logging.String("audio", audioPath),
		logging.Int("segments", len(segments)))
	return segments, nil
}

// HealthCheck reports whether the configured engine binary is resolvable.
func (s *Service) HealthCheck(ctx context.Context) stage.Health {
	const name = "transcription"
	binary := strings.TrimSpace(s.cfg.Binary)
	if binary == "" {
		return stage.Unhealthy(name, "engine binary not configured")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("binary %q not found", binary))
	}
	return stage.Healthy(name)
}

// buildArgs constructs the WhisperX command arguments.
func (s *Service) buildArgs(audioPath, outputDir string) []string {
	args := []string{
		audioPath,
		"--model", s.cfg.Model,
		"--output_dir", outputDir,
		"--output_format", "json",
	}
	if lang := language.ToISO2(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	if s.cfg.CUDA {
		args = append(args, "--device", "cuda")
	} else {
		args = append(args, "--device", "cpu", "--compute_type", "int8")
	}
	return args
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// applyReplacements rewrites engine misspellings configured for the active
// language.
func (s *Service) applyReplacements(segments []segment.Segment) []segment.Segment {
	lang := language.ToISO2(s.cfg.Language)
	replacements := s.cfg.Replacements[lang]
	if len(replacements) == 0 {
		return segments
	}
	for i := range segments {
		for old, repl := range replacements {
			segments[i].Text = strings.ReplaceAll(segments[i].Text, old, repl)
		}
	}
	return segments
}

type enginePayload struct {
	Segments []engineSegment `json:"segments"`
}

type engineSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// loadSegments parses engine JSON output, trimming text and dropping empty
// segments.
func loadSegments(jsonPath string) ([]segment.Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, services.Wrap(services.ErrStageFailure, "transcription", "load segments",
			"engine produced no output", err)
	}
	var payload enginePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, services.Wrap(services.ErrStageFailure, "transcription", "load segments",
			"parse engine json", err)
	}

	segments := make([]segment.Segment, 0, len(payload.Segments))
	for _, raw := range payload.Segments {
		text := strings.TrimSpace(raw.Text)
		if text == "" {
			continue
		}
		segments = append(segments, segment.Segment{Start: raw.Start, End: raw.End, Text: text})
	}
	return segments, nil
}

func isBinaryMissing(err error) bool {
	var execErr *exec.Error
	return errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound)
}
