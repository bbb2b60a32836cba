package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"scribe/internal/config"
)

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mkv":  {},
	".avi":  {},
	".mov":  {},
	".webm": {},
	".m4v":  {},
	".mpg":  {},
	".mpeg": {},
	".ts":   {},
	".flv":  {},
	".wmv":  {},
}

func isVideoFile(path string) bool {
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// collectVideos expands file and directory arguments into a deduplicated,
// sorted list of absolute video paths. Non-video files passed explicitly are
// an error; non-video files found while walking a directory are skipped.
func collectVideos(args []string) ([]string, error) {
	seen := make(map[string]struct{})
	var videos []string

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		videos = append(videos, path)
	}

	for _, arg := range args {
		path, err := config.ExpandPath(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			if !isVideoFile(path) {
				return nil, fmt.Errorf("%s is not a recognized video file", arg)
			}
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(entry string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !d.IsDir() && isVideoFile(entry) {
				add(entry)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", arg, err)
		}
	}

	sort.Strings(videos)
	return videos, nil
}

// formatTimecode renders seconds as M:SS or H:MM:SS for display.
func formatTimecode(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

func formatBytes(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.IBytes(uint64(size))
}

// stripMarkTags removes snippet highlight markers for plain terminal output.
func stripMarkTags(s string) string {
	return replaceMarkTags(s, "", "")
}

func replaceMarkTags(s, open, closing string) string {
	s = strings.ReplaceAll(s, "<mark>", open)
	return strings.ReplaceAll(s, "</mark>", closing)
}
