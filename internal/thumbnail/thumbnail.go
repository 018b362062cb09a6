// Package thumbnail locates camera-written preview images for media files
// and optionally renders one with ffmpeg.
package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"camtrace/internal/config"
	"camtrace/internal/logging"
	"camtrace/internal/services"
	"camtrace/internal/textutil"
)

// Finder is the thumbnail collaborator used during metadata extraction.
type Finder interface {
	FindOrGenerate(ctx context.Context, path string) (string, error)
}

// RunFunc executes an external command and returns its combined output.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// thumbnailNamespace scopes generated file names so the same media path
// always maps to the same thumbnail.
var thumbnailNamespace = uuid.MustParse("6f1c7b0e-4a51-5d3c-9a57-2f8b0c4e9d11")

// Locator looks for sibling thumbnails and, when enabled, renders a frame
// into the thumbnail directory. It never writes next to the footage.
type Locator struct {
	generate bool
	ffmpeg   string
	outDir   string
	width    int
	timeout  time.Duration
	run      RunFunc
	logger   *slog.Logger
}

// Option customizes a Locator.
type Option func(*Locator)

// WithRunner replaces command execution, mainly for tests.
func WithRunner(run RunFunc) Option {
	return func(l *Locator) {
		if run != nil {
			l.run = run
		}
	}
}

// NewLocator builds a Locator from cfg.
func NewLocator(cfg *config.Config, logger *slog.Logger, opts ...Option) *Locator {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	l := &Locator{
		generate: cfg.Media.GenerateThumbnails,
		ffmpeg:   cfg.FFmpegBinary(),
		outDir:   cfg.Paths.ThumbnailDir,
		width:    cfg.Media.ThumbnailWidth,
		timeout:  time.Duration(cfg.Media.ProbeTimeoutSeconds) * time.Second,
		run:      runCommand,
		logger:   logging.NewComponentLogger(logger, "thumbnail"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FindOrGenerate returns the path of a thumbnail for media, or "" when none
// exists and generation is disabled.
func (l *Locator) FindOrGenerate(ctx context.Context, media string) (string, error) {
	if found := findSibling(media); found != "" {
		return found, nil
	}
	if !l.generate || strings.TrimSpace(l.outDir) == "" {
		return "", nil
	}
	return l.render(ctx, media)
}

// candidates lists sibling thumbnail names in lookup order, relative to the
// media file's directory.
func candidates(media string) []string {
	base := strings.TrimSuffix(filepath.Base(media), filepath.Ext(media))
	return []string{
		base + "T01.JPG",
		base + ".THM",
		base + ".jpg",
		filepath.Join("THMBNL", base+".JPG"),
		filepath.Join("THMBNL", base+"T01.JPG"),
	}
}

func findSibling(media string) string {
	dir := filepath.Dir(media)
	listings := map[string][]fs.DirEntry{}
	for _, candidate := range candidates(media) {
		sub := filepath.Join(dir, filepath.Dir(candidate))
		entries, ok := listings[sub]
		if !ok {
			entries, _ = os.ReadDir(sub)
			listings[sub] = entries
		}
		want := filepath.Base(candidate)
		for _, entry := range entries {
			if !entry.IsDir() && strings.EqualFold(entry.Name(), want) {
				return filepath.Join(sub, entry.Name())
			}
		}
	}
	return ""
}

// OutputPath returns the generated thumbnail location for media.
func (l *Locator) OutputPath(media string) string {
	id := uuid.NewSHA1(thumbnailNamespace, []byte(filepath.Clean(media)))
	base := textutil.SanitizeToken(strings.TrimSuffix(filepath.Base(media), filepath.Ext(media)), "clip")
	return filepath.Join(l.outDir, base+"-"+id.String()[:8]+".jpg")
}

func (l *Locator) render(ctx context.Context, media string) (string, error) {
	out := l.OutputPath(media)
	if info, err := os.Stat(out); err == nil && info.Size() > 0 {
		return out, nil
	}
	if err := os.MkdirAll(l.outDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "thumbnail", "create dir", "Cannot create thumbnail directory", err)
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-ss", "1",
		"-i", media,
		"-frames:v", "1",
		"-vf", "scale=" + strconv.Itoa(l.width) + ":-2",
		out,
	}
	output, err := l.run(ctx, l.ffmpeg, args...)
	if err != nil {
		_ = os.Remove(out)
		return "", services.Wrap(services.ErrExternalTool, "thumbnail", "ffmpeg", fmt.Sprintf("ffmpeg failed: %s", strings.TrimSpace(string(output))), err)
	}
	if _, err := os.Stat(out); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", services.Wrap(services.ErrExternalTool, "thumbnail", "ffmpeg", "ffmpeg produced no image", nil)
		}
		return "", err
	}
	l.logger.Debug("thumbnail generated", logging.String(logging.FieldFile, media), logging.String("thumbnail_path", out))
	return out, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var buf bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.Bytes(), err
}
