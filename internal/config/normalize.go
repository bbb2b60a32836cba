package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExtraction()
	c.normalizeTranscription()
	c.normalizeShaper()
	c.normalizeSubtitles()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = filepath.Join(os.TempDir(), "scribe")
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeExtraction() {
	c.Extraction.FFmpegBinary = strings.TrimSpace(c.Extraction.FFmpegBinary)
	if c.Extraction.FFmpegBinary == "" {
		c.Extraction.FFmpegBinary = defaultFFmpegBinary
	}
	if c.Extraction.SampleRate <= 0 {
		c.Extraction.SampleRate = defaultSampleRate
	}
	if c.Extraction.Channels <= 0 {
		c.Extraction.Channels = defaultChannels
	}
	if c.Extraction.VerifyAttempts <= 0 {
		c.Extraction.VerifyAttempts = defaultVerifyAttempts
	}
	if c.Extraction.VerifyBackoffMS <= 0 {
		c.Extraction.VerifyBackoffMS = defaultVerifyBackoffMS
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Binary = strings.TrimSpace(c.Transcription.Binary)
	if c.Transcription.Binary == "" {
		c.Transcription.Binary = defaultWhisperBinary
	}
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultWhisperModel
	}
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
}

func (c *Config) normalizeShaper() {
	if c.Shaper.MinDuration <= 0 {
		c.Shaper.MinDuration = defaultMinDuration
	}
	if c.Shaper.MergeMaxChars <= 0 {
		c.Shaper.MergeMaxChars = defaultMergeMaxChars
	}
	if c.Shaper.MaxGap <= 0 {
		c.Shaper.MaxGap = defaultMaxGap
	}
	if c.Shaper.SplitMaxChars <= 0 {
		c.Shaper.SplitMaxChars = defaultSplitMaxChars
	}
	if c.Shaper.MaxDuration <= 0 {
		c.Shaper.MaxDuration = defaultMaxDuration
	}
}

func (c *Config) normalizeSubtitles() {
	if len(c.Subtitles.Formats) == 0 {
		c.Subtitles.Formats = []string{"srt"}
		return
	}
	formats := make([]string, 0, len(c.Subtitles.Formats))
	seen := make(map[string]struct{}, len(c.Subtitles.Formats))
	for _, format := range c.Subtitles.Formats {
		normalized := strings.ToLower(strings.TrimSpace(format))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		formats = append(formats, normalized)
	}
	if len(formats) == 0 {
		formats = []string{"srt"}
	}
	c.Subtitles.Formats = formats
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
