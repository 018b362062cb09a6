package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir       string `toml:"log_dir"`
	ThumbnailDir string `toml:"thumbnail_dir"`
}

// Analysis contains configuration for the attribution pipeline.
type Analysis struct {
	Workers           int      `toml:"workers"`
	VideoExtensions   []string `toml:"video_extensions"`
	SidecarExtensions []string `toml:"sidecar_extensions"`
	ExcludeDirs       []string `toml:"exclude_dirs"`
	CollisionPolicy   string   `toml:"collision_policy"`
}

// Media contains configuration for the external probing tools.
type Media struct {
	FFprobeBinary       string `toml:"ffprobe_binary"`
	FFmpegBinary        string `toml:"ffmpeg_binary"`
	ProbeTimeoutSeconds int    `toml:"probe_timeout_seconds"`
	GenerateThumbnails  bool   `toml:"generate_thumbnails"`
	ThumbnailWidth      int    `toml:"thumbnail_width"`
}

// Export contains defaults for the export command.
type Export struct {
	Format         string `toml:"format"`
	IncludeUnknown bool   `toml:"include_unknown"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for camtrace.
//
// Configuration sections by subsystem:
//   - Paths: log and thumbnail directories
//   - Analysis: worker count, file classification and registry collisions
//   - Media: ffprobe/ffmpeg binaries and thumbnail generation
//   - Export: default export format
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Analysis Analysis `toml:"analysis"`
	Media    Media    `toml:"media"`
	Export   Export   `toml:"export"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("camtrace.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log directory and, when thumbnail generation
// is enabled, the thumbnail directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	if c.Media.GenerateThumbnails {
		dirs = append(dirs, c.Paths.ThumbnailDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFprobeBinary returns the ffprobe executable used for metadata extraction.
func (c *Config) FFprobeBinary() string {
	if c == nil || strings.TrimSpace(c.Media.FFprobeBinary) == "" {
		return defaultFFprobeBinary
	}
	return c.Media.FFprobeBinary
}

// FFmpegBinary returns the ffmpeg executable used for thumbnail generation.
func (c *Config) FFmpegBinary() string {
	if c == nil || strings.TrimSpace(c.Media.FFmpegBinary) == "" {
		return defaultFFmpegBinary
	}
	return c.Media.FFmpegBinary
}

// IsVideoExtension reports whether ext (with or without the leading dot)
// names a supported video container. Matching is case-insensitive.
func (c *Config) IsVideoExtension(ext string) bool {
	return containsExtension(c.Analysis.VideoExtensions, ext)
}

// IsSidecarExtension reports whether ext names a descriptor file.
func (c *Config) IsSidecarExtension(ext string) bool {
	return containsExtension(c.Analysis.SidecarExtensions, ext)
}

func containsExtension(set []string, ext string) bool {
	ext = normalizeExtension(ext)
	if ext == "" {
		return false
	}
	for _, candidate := range set {
		if candidate == ext {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// Encode writes the effective configuration as TOML. Values reflect
// normalization, so paths are absolute and extensions lower-cased.
func (c *Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
