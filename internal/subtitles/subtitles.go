// Package subtitles renders shaped transcript segments as SRT or WebVTT
// files next to the source video.
package subtitles

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scribe/internal/segment"
	"scribe/internal/services"
)

// Format selects a subtitle output encoding.
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

// ParseFormat validates a format name from configuration or flags.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "srt":
		return FormatSRT, nil
	case "vtt", "webvtt":
		return FormatVTT, nil
	default:
		return "", services.Wrap(services.ErrValidation, "subtitles", "parse format",
			fmt.Sprintf("unsupported format %q", value), nil)
	}
}

// Generate writes the segments as a subtitle file alongside videoPath,
// replacing the video extension with the format's. It refuses to write a file
// with no cues.
func Generate(segments []segment.Segment, videoPath string, format Format) (string, error) {
	outputPath := OutputPath(videoPath, format)
	content, err := Render(segments, format)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return "", services.Wrap(services.ErrStorage, "subtitles", "generate", "write "+outputPath, err)
	}
	return outputPath, nil
}

// OutputPath returns the subtitle path for videoPath in the given format.
func OutputPath(videoPath string, format Format) string {
	ext := filepath.Ext(videoPath)
	return strings.TrimSuffix(videoPath, ext) + "." + string(format)
}

// Render produces the subtitle file body for the segments.
func Render(segments []segment.Segment, format Format) (string, error) {
	if len(segments) == 0 {
		return "", services.Wrap(services.ErrValidation, "subtitles", "render", "no cues to write", nil)
	}

	var b strings.Builder
	switch format {
	case FormatSRT:
		for i, seg := range segments {
			fmt.Fprintf(&b, "%d\n", i+1)
			fmt.Fprintf(&b, "%s --> %s\n", formatTimestamp(seg.Start, ","), formatTimestamp(seg.End, ","))
			b.WriteString(seg.Text)
			b.WriteString("\n\n")
		}
	case FormatVTT:
		b.WriteString("WEBVTT\n\n")
		for _, seg := range segments {
			fmt.Fprintf(&b, "%s --> %s\n", formatTimestamp(seg.Start, "."), formatTimestamp(seg.End, "."))
			b.WriteString(seg.Text)
			b.WriteString("\n\n")
		}
	default:
		return "", services.Wrap(services.ErrValidation, "subtitles", "render",
			fmt.Sprintf("unsupported format %q", format), nil)
	}
	return b.String(), nil
}

// formatTimestamp renders seconds as HH:MM:SS<sep>mmm. SRT separates
// milliseconds with a comma, WebVTT with a period.
func formatTimestamp(seconds float64, sep string) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int64(seconds*1000 + 0.5)
	hours := millis / 3_600_000
	millis -= hours * 3_600_000
	minutes := millis / 60_000
	millis -= minutes * 60_000
	secs := millis / 1000
	millis -= secs * 1000
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", hours, minutes, secs, sep, millis)
}
