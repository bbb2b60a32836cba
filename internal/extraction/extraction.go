// Package extraction shells out to ffmpeg to pull a normalized audio track
// out of a video container.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/services"
	"scribe/internal/stage"
)

// Service extracts mono PCM audio with ffmpeg.
type Service struct {
	cfg           config.Extraction
	logger        *slog.Logger
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates an extraction service from configuration.
func NewService(cfg config.Extraction, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		cfg:    cfg,
		logger: logger.With(logging.String(logging.FieldComponent, "extraction")),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Extract writes the audio track of videoPath into workDir as a mono 16 kHz
// WAV file and returns its path. A missing or unreadable output after a
// successful ffmpeg run is retried with backoff; if verification still fails
// the path is returned with a warning so transcription can surface the real
// error.
func (s *Service) Extract(ctx context.Context, videoPath, workDir string, report stage.Reporter) (string, error) {
	if report == nil {
		report = stage.NopReporter
	}
	if _, err := os.Stat(videoPath); err != nil {
		return "", services.Wrap(services.ErrNotFound, "extraction", "extract", videoPath, err)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrStorage, "extraction", "extract", "ensure work dir", err)
	}

	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	audioPath := filepath.Join(workDir, base+".wav")

	report(0, "extracting audio")
	args := s.buildArgs(videoPath, audioPath)
	if err := s.run(ctx, s.cfg.FFmpegBinary, args...); err != nil {
		if isBinaryMissing(err) {
			return "", services.Wrap(services.ErrEngineUnavailable, "extraction", "extract",
				fmt.Sprintf("ffmpeg binary %q not found", s.cfg.FFmpegBinary), err)
		}
		return "", services.Wrap(services.ErrStageFailure, "extraction", "extract", "ffmpeg", err)
	}

	s.verifyOutput(ctx, audioPath)
	report(100, "audio extracted")
	s.logger.Info("audio extracted",
		logging.String(logging.FieldVideo, videoPath),
		logging.String("audio", audioPath))
	return audioPath, nil
}

// HealthCheck reports whether the configured ffmpeg binary is resolvable.
func (s *Service) HealthCheck(ctx context.Context) stage.Health {
	const name = "extraction"
	binary := strings.TrimSpace(s.cfg.FFmpegBinary)
	if binary == "" {
		return stage.Unhealthy(name, "ffmpeg binary not configured")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("binary %q not found", binary))
	}
	return stage.Healthy(name)
}

// buildArgs constructs the ffmpeg arguments for PCM extraction.
func (s *Service) buildArgs(videoPath, audioPath string) []string {
	sampleRate := s.cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	channels := s.cfg.Channels
	if channels <= 0 {
		channels = 1
	}
	return []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(sampleRate),
		audioPath,
	}
}

// verifyOutput waits for the audio file to become visible and non-empty.
// Some filesystems lag behind ffmpeg's close; failure here is logged, not
// fatal.
func (s *Service) verifyOutput(ctx context.Context, audioPath string) {
	attempts := s.cfg.VerifyAttempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := time.Duration(s.cfg.VerifyBackoffMS) * time.Millisecond
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		info, err := os.Stat(audioPath)
		if err == nil && info.Size() > 0 {
			return
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
	s.logger.Warn("audio output not verified", logging.String("audio", audioPath))
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

func isBinaryMissing(err error) bool {
	var execErr *exec.Error
	return errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound)
}
