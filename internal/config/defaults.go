package config

const (
	defaultConfigPath          = "~/.config/camtrace/config.toml"
	defaultLogDir              = "~/.local/share/camtrace/logs"
	defaultThumbnailDir        = "~/.cache/camtrace/thumbnails"
	defaultWorkers             = 4
	defaultCollisionPolicy     = "first"
	defaultFFprobeBinary       = "ffprobe"
	defaultFFmpegBinary        = "ffmpeg"
	defaultProbeTimeoutSeconds = 30
	defaultThumbnailWidth      = 320
	defaultExportFormat        = "csv"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	maxWorkers                 = 64
)

func defaultVideoExtensions() []string {
	return []string{".mp4", ".mov", ".mxf", ".mts", ".m2ts", ".avi", ".mkv", ".m4v", ".3gp"}
}

func defaultSidecarExtensions() []string {
	return []string{".xml"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:       defaultLogDir,
			ThumbnailDir: defaultThumbnailDir,
		},
		Analysis: Analysis{
			Workers:           defaultWorkers,
			VideoExtensions:   defaultVideoExtensions(),
			SidecarExtensions: defaultSidecarExtensions(),
			CollisionPolicy:   defaultCollisionPolicy,
		},
		Media: Media{
			FFprobeBinary:       defaultFFprobeBinary,
			FFmpegBinary:        defaultFFmpegBinary,
			ProbeTimeoutSeconds: defaultProbeTimeoutSeconds,
			ThumbnailWidth:      defaultThumbnailWidth,
		},
		Export: Export{
			Format: defaultExportFormat,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
