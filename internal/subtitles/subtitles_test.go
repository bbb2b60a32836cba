package subtitles

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/segment"
	"scribe/internal/services"
)

func testSegments() []segment.Segment {
	return []segment.Segment{
		{Start: 0, End: 2.5, Text: "First line of dialogue."},
		{Start: 3661.25, End: 3663, Text: "An hour and a bit later."},
	}
}

func TestRenderSRT(t *testing.T) {
	content, err := Render(testSegments(), FormatSRT)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	expected := "1\n" +
		"00:00:00,000 --> 00:00:02,500\n" +
		"First line of dialogue.\n\n" +
		"2\n" +
		"01:01:01,250 --> 01:01:03,000\n" +
		"An hour and a bit later.\n\n"
	if content != expected {
		t.Fatalf("srt output:\n%q\nwant:\n%q", content, expected)
	}
}

func TestRenderVTT(t *testing.T) {
	content, err := Render(testSegments(), FormatVTT)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(content, "WEBVTT\n\n") {
		t.Fatalf("missing WEBVTT header: %q", content)
	}
	if !strings.Contains(content, "00:00:00.000 --> 00:00:02.500\n") {
		t.Fatalf("vtt timestamps wrong:\n%q", content)
	}
	if strings.Contains(content, ",") {
		t.Fatalf("vtt should not use comma separators:\n%q", content)
	}
}

func TestRenderRejectsEmpty(t *testing.T) {
	if _, err := Render(nil, FormatSRT); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateWritesNextToVideo(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "lecture.mp4")

	path, err := Generate(testSegments(), videoPath, FormatSRT)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if path != filepath.Join(dir, "lecture.srt") {
		t.Fatalf("output path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "First line of dialogue.") {
		t.Fatalf("output missing cue text")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"srt", FormatSRT, false},
		{"SRT", FormatSRT, false},
		{"vtt", FormatVTT, false},
		{"webvtt", FormatVTT, false},
		{"ass", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil || got != tt.expected {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.input, got, err)
		}
	}
}
