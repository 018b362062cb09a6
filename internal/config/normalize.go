package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAnalysis()
	c.normalizeMedia()
	c.normalizeExport()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ThumbnailDir) == "" {
		c.Paths.ThumbnailDir = defaultThumbnailDir
	}
	if c.Paths.ThumbnailDir, err = expandPath(c.Paths.ThumbnailDir); err != nil {
		return fmt.Errorf("paths.thumbnail_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAnalysis() {
	if c.Analysis.Workers <= 0 {
		c.Analysis.Workers = defaultWorkers
	}
	c.Analysis.VideoExtensions = normalizeExtensions(c.Analysis.VideoExtensions)
	if len(c.Analysis.VideoExtensions) == 0 {
		c.Analysis.VideoExtensions = defaultVideoExtensions()
	}
	c.Analysis.SidecarExtensions = normalizeExtensions(c.Analysis.SidecarExtensions)
	if len(c.Analysis.SidecarExtensions) == 0 {
		c.Analysis.SidecarExtensions = defaultSidecarExtensions()
	}

	excludes := make([]string, 0, len(c.Analysis.ExcludeDirs))
	for _, dir := range c.Analysis.ExcludeDirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		excludes = append(excludes, filepath.Clean(dir))
	}
	c.Analysis.ExcludeDirs = excludes

	c.Analysis.CollisionPolicy = strings.ToLower(strings.TrimSpace(c.Analysis.CollisionPolicy))
	if c.Analysis.CollisionPolicy == "" {
		c.Analysis.CollisionPolicy = defaultCollisionPolicy
	}
}

func (c *Config) normalizeMedia() {
	if value, ok := os.LookupEnv("CAMTRACE_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Media.FFprobeBinary = strings.TrimSpace(value)
	}
	c.Media.FFprobeBinary = strings.TrimSpace(c.Media.FFprobeBinary)
	if c.Media.FFprobeBinary == "" {
		c.Media.FFprobeBinary = defaultFFprobeBinary
	}
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	if c.Media.FFmpegBinary == "" {
		c.Media.FFmpegBinary = defaultFFmpegBinary
	}
	if c.Media.ProbeTimeoutSeconds <= 0 {
		c.Media.ProbeTimeoutSeconds = defaultProbeTimeoutSeconds
	}
	if c.Media.ThumbnailWidth <= 0 {
		c.Media.ThumbnailWidth = defaultThumbnailWidth
	}
}

func (c *Config) normalizeExport() {
	c.Export.Format = strings.ToLower(strings.TrimSpace(c.Export.Format))
	if c.Export.Format == "" {
		c.Export.Format = defaultExportFormat
	}
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("CAMTRACE_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// normalizeExtension lower-cases ext and ensures a leading dot.
func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func normalizeExtensions(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		ext := normalizeExtension(value)
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
