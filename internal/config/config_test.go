package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultNormalizes(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) {
		t.Fatalf("data dir not expanded: %q", cfg.Paths.DataDir)
	}
	if cfg.Paths.WorkDir == "" {
		t.Fatal("work dir should default to a temp location")
	}
	if cfg.Extraction.SampleRate != 16000 || cfg.Extraction.Channels != 1 {
		t.Fatalf("unexpected extraction defaults: %+v", cfg.Extraction)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, path, exists, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatalf("expected missing file, got exists for %s", path)
	}
	if cfg.Transcription.Binary != "whisperx" {
		t.Fatalf("unexpected default binary: %q", cfg.Transcription.Binary)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`data_dir = "` + filepath.Join(dir, "data") + `"`,
		"[transcription]",
		`model = "small"`,
		`language = "EN"`,
		"[transcription.replacements.tr]",
		`"i" = "x"`,
		"[pipeline]",
		"max_concurrent = 4",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Transcription.Model != "small" {
		t.Fatalf("model override lost: %q", cfg.Transcription.Model)
	}
	if cfg.Transcription.Language != "en" {
		t.Fatalf("language should be lowercased: %q", cfg.Transcription.Language)
	}
	if cfg.Pipeline.MaxConcurrent != 4 {
		t.Fatalf("max_concurrent override lost: %d", cfg.Pipeline.MaxConcurrent)
	}
	if got := cfg.Transcription.Replacements["tr"]["i"]; got != "x" {
		t.Fatalf("replacement table lost: %+v", cfg.Transcription.Replacements)
	}
}

func TestValidateRejectsBadFormat(t *testing.T) {
	cfg := Default()
	cfg.Subtitles.Formats = []string{"ass"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported subtitle format")
	}
}

func TestValidateRejectsNegativeConcurrency(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.MaxConcurrent = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative max_concurrent")
	}
}

func TestNormalizeSubtitleFormatsDedup(t *testing.T) {
	cfg := Default()
	cfg.Subtitles.Formats = []string{"SRT", "srt", " vtt "}
	cfg.normalizeSubtitles()
	if len(cfg.Subtitles.Formats) != 2 || cfg.Subtitles.Formats[0] != "srt" || cfg.Subtitles.Formats[1] != "vtt" {
		t.Fatalf("unexpected formats: %v", cfg.Subtitles.Formats)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[transcription]") {
		t.Fatalf("sample missing transcription section")
	}
}
