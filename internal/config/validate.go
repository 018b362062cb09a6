package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.Workers < 1 || c.Analysis.Workers > maxWorkers {
		return fmt.Errorf("analysis.workers must be between 1 and %d", maxWorkers)
	}
	switch c.Analysis.CollisionPolicy {
	case "first", "last", "reject":
	default:
		return fmt.Errorf("analysis.collision_policy must be one of first, last, reject (got %q)", c.Analysis.CollisionPolicy)
	}
	for _, ext := range c.Analysis.SidecarExtensions {
		if c.IsVideoExtension(ext) {
			return fmt.Errorf("extension %q cannot be both a video and a sidecar extension", ext)
		}
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.ProbeTimeoutSeconds <= 0 {
		return errors.New("media.probe_timeout_seconds must be positive")
	}
	if c.Media.ThumbnailWidth < 16 || c.Media.ThumbnailWidth > 4096 {
		return errors.New("media.thumbnail_width must be between 16 and 4096")
	}
	return nil
}

func (c *Config) validateExport() error {
	switch c.Export.Format {
	case "csv", "sqlite":
		return nil
	default:
		return fmt.Errorf("export.format must be csv or sqlite (got %q)", c.Export.Format)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
