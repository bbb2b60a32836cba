package config

const (
	defaultDataDir         = "~/.local/share/scribe"
	defaultLogDir          = "~/.local/share/scribe/logs"
	defaultFFmpegBinary    = "ffmpeg"
	defaultSampleRate      = 16000
	defaultChannels        = 1
	defaultVerifyAttempts  = 5
	defaultVerifyBackoffMS = 200
	defaultWhisperBinary   = "whisperx"
	defaultWhisperModel    = "base"
	defaultMinDuration     = 1.0
	defaultMergeMaxChars   = 100
	defaultMaxGap          = 1.0
	defaultSplitMaxChars   = 80
	defaultMaxDuration     = 6.0
	defaultMaxConcurrent   = 2
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Extraction: Extraction{
			FFmpegBinary:    defaultFFmpegBinary,
			SampleRate:      defaultSampleRate,
			Channels:        defaultChannels,
			VerifyAttempts:  defaultVerifyAttempts,
			VerifyBackoffMS: defaultVerifyBackoffMS,
		},
		Transcription: Transcription{
			Binary: defaultWhisperBinary,
			Model:  defaultWhisperModel,
		},
		Shaper: Shaper{
			MinDuration:   defaultMinDuration,
			MergeMaxChars: defaultMergeMaxChars,
			MaxGap:        defaultMaxGap,
			SplitMaxChars: defaultSplitMaxChars,
			MaxDuration:   defaultMaxDuration,
		},
		Pipeline: Pipeline{
			MaxConcurrent: defaultMaxConcurrent,
		},
		Subtitles: Subtitles{
			Enabled: true,
			Formats: []string{"srt"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
