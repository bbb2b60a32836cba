// Package logging builds the slog loggers used across scribe and keeps the
// structured field vocabulary in one place.
package logging
