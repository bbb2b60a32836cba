// Package language normalizes language hints handed to the speech engine.
//
// Users write hints as 2-letter codes, 3-letter codes, or full names
// ("english"); the engine wants ISO 639-1.
package language
