// Package discovery walks an analysis root and collects descriptor and video
// candidates by extension.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"camtrace/internal/config"
	"camtrace/internal/logging"
	"camtrace/internal/services"
)

// Lister enumerates one directory level.
type Lister interface {
	ListDirectory(path string) ([]fs.DirEntry, error)
}

// OSLister reads directories from the local filesystem.
type OSLister struct{}

// ListDirectory implements Lister with os.ReadDir.
func (OSLister) ListDirectory(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// SkippedDir records a subtree that could not be listed.
type SkippedDir struct {
	Path string
	Err  error
}

// Result holds the files found under Root. Sidecars and Videos are sorted
// lexically by absolute path.
type Result struct {
	Root     string
	Sidecars []string
	Videos   []string
	Skipped  []SkippedDir
}

// Walker performs the recursive scan.
type Walker struct {
	lister Lister
	cfg    *config.Config
	logger *slog.Logger
}

// Option customizes a Walker.
type Option func(*Walker)

// WithLister swaps the directory source, mainly for tests.
func WithLister(l Lister) Option {
	return func(w *Walker) {
		if l != nil {
			w.lister = l
		}
	}
}

// NewWalker builds a walker using cfg's extension sets and exclusions.
func NewWalker(cfg *config.Config, logger *slog.Logger, opts ...Option) *Walker {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	w := &Walker{
		lister: OSLister{},
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "discovery"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk scans root. Unreadable subdirectories are logged and skipped; a root
// that is missing, not a directory, or cannot be listed is an error.
func (w *Walker) Walk(root string) (*Result, error) {
	abs, err := filepath.Abs(strings.TrimSpace(root))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "discovery", "resolve root", "Invalid root path", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "discovery", "stat root", fmt.Sprintf("Root %q does not exist", abs), err)
		}
		return nil, services.Wrap(services.ErrUnreadable, "discovery", "stat root", fmt.Sprintf("Root %q is not accessible", abs), err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "discovery", "stat root", fmt.Sprintf("Root %q is not a directory", abs), nil)
	}

	excluded := buildExcluded(abs, w.cfg.Analysis.ExcludeDirs)
	result := &Result{Root: abs}

	rootEntries, err := w.lister.ListDirectory(abs)
	if err != nil {
		return nil, services.Wrap(services.ErrUnreadable, "discovery", "list root", fmt.Sprintf("Root %q cannot be listed", abs), err)
	}
	w.visit(abs, rootEntries, excluded, result)

	sort.Strings(result.Sidecars)
	sort.Strings(result.Videos)
	return result, nil
}

func (w *Walker) visit(dir string, entries []fs.DirEntry, excluded []string, result *Result) {
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)
		if entry.IsDir() {
			if strings.HasPrefix(name, ".") || isExcluded(path, excluded) {
				w.logger.Debug("directory excluded", logging.String("dir", path))
				continue
			}
			children, err := w.lister.ListDirectory(path)
			if err != nil {
				result.Skipped = append(result.Skipped, SkippedDir{Path: path, Err: err})
				logging.WarnWithContext(w.logger, "subtree skipped", "subtree_skipped",
					logging.String("dir", path),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check directory permissions"),
					logging.String(logging.FieldImpact, "files below this directory are not analyzed"),
				)
				continue
			}
			w.visit(path, children, excluded, result)
			continue
		}
		if mode := entry.Type(); !mode.IsRegular() && mode&fs.ModeSymlink == 0 {
			continue
		}
		ext := filepath.Ext(name)
		switch {
		case w.cfg.IsVideoExtension(ext):
			result.Videos = append(result.Videos, path)
		case w.cfg.IsSidecarExtension(ext):
			result.Sidecars = append(result.Sidecars, path)
		}
	}
}

func buildExcluded(root string, excludeDirs []string) []string {
	excluded := make([]string, 0, len(excludeDirs))
	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if filepath.IsAbs(x) {
			excluded = append(excluded, filepath.Clean(x))
			continue
		}
		excluded = append(excluded, filepath.Clean(filepath.Join(root, x)))
	}
	sort.Strings(excluded)
	return excluded
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if path == base || strings.HasPrefix(path, base+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
