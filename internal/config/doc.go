// Package config loads and validates the TOML configuration that wires the
// transcription pipeline, the transcript index, and logging together.
package config
