package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks a missing input file.
	ErrNotFound = errors.New("not found")
	// ErrEngineUnavailable marks an external engine whose binary or model
	// could not be resolved.
	ErrEngineUnavailable = errors.New("engine unavailable")
	// ErrStageFailure marks an engine that ran but produced an error or
	// invalid output.
	ErrStageFailure = errors.New("stage failure")
	// ErrStorage marks an index read or write failure.
	ErrStorage = errors.New("storage error")
	// ErrValidation marks malformed input, such as a segment whose end does
	// not follow its start.
	ErrValidation = errors.New("validation error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrStageFailure
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Message returns the caller-facing text of a stage error: everything after
// the sentinel prefix, or the full error text when no sentinel is present.
// Terminal job states carry this verbatim.
func Message(err error) string {
	if err == nil {
		return ""
	}
	text := err.Error()
	for _, marker := range []error{ErrNotFound, ErrEngineUnavailable, ErrStageFailure, ErrStorage, ErrValidation} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(text, prefix) {
			return strings.TrimPrefix(text, prefix)
		}
	}
	return text
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
