package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateShaper(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateShaper() error {
	if c.Shaper.SplitMaxChars > c.Shaper.MergeMaxChars {
		return errors.New("shaper.split_max_chars must not exceed shaper.merge_max_chars")
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	for _, format := range c.Subtitles.Formats {
		switch format {
		case "srt", "vtt":
		default:
			return fmt.Errorf("subtitles.formats: unsupported format %q (srt or vtt)", format)
		}
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.MaxConcurrent < 0 {
		return errors.New("pipeline.max_concurrent must not be negative")
	}
	return nil
}
