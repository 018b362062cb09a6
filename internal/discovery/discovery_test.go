package discovery_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"camtrace/internal/config"
	"camtrace/internal/discovery"
	"camtrace/internal/logging"
	"camtrace/internal/services"
	"camtrace/internal/testsupport"
)

func TestWalkCollectsSortedSidecarsAndVideos(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"card2/C0002.MP4",
		"card1/Clip/C0001.MXF",
		"card1/MEDIAPRO.XML",
		"card1/Clip/C0001M01.XML",
		"card1/notes.txt",
		"card3/a.mov",
		".Trashes/C9999.MP4",
		"proxies/P0001.MP4",
	} {
		testsupport.WriteFile(t, filepath.Join(root, rel), 1)
	}

	cfg := config.Default()
	cfg.Analysis.ExcludeDirs = []string{"proxies"}
	result, err := discovery.NewWalker(&cfg, logging.NewNop()).Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	wantVideos := []string{
		filepath.Join(root, "card1", "Clip", "C0001.MXF"),
		filepath.Join(root, "card2", "C0002.MP4"),
		filepath.Join(root, "card3", "a.mov"),
	}
	if !slices.Equal(result.Videos, wantVideos) {
		t.Fatalf("videos = %v, want %v", result.Videos, wantVideos)
	}
	wantSidecars := []string{
		filepath.Join(root, "card1", "Clip", "C0001M01.XML"),
		filepath.Join(root, "card1", "MEDIAPRO.XML"),
	}
	if !slices.Equal(result.Sidecars, wantSidecars) {
		t.Fatalf("sidecars = %v, want %v", result.Sidecars, wantSidecars)
	}
	if result.Root != root {
		t.Fatalf("root = %q", result.Root)
	}
}

type failingLister struct {
	fail string
}

func (l failingLister) ListDirectory(path string) ([]fs.DirEntry, error) {
	if filepath.Base(path) == l.fail {
		return nil, fs.ErrPermission
	}
	return os.ReadDir(path)
}

func TestWalkSkipsUnreadableSubtree(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "ok", "a.mp4"), 1)
	testsupport.WriteFile(t, filepath.Join(root, "locked", "b.mp4"), 1)

	walker := discovery.NewWalker(nil, logging.NewNop(), discovery.WithLister(failingLister{fail: "locked"}))
	result, err := walker.Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(result.Videos) != 1 || filepath.Base(result.Videos[0]) != "a.mp4" {
		t.Fatalf("unexpected videos: %v", result.Videos)
	}
	if len(result.Skipped) != 1 || !errors.Is(result.Skipped[0].Err, fs.ErrPermission) {
		t.Fatalf("expected one skipped subtree, got %+v", result.Skipped)
	}
}

func TestWalkRootFailures(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "clip.mp4")
	testsupport.WriteFile(t, file, 1)

	if _, err := discovery.NewWalker(nil, nil).Walk(filepath.Join(root, "missing")); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("missing root: expected ErrNotFound, got %v", err)
	}
	if _, err := discovery.NewWalker(nil, nil).Walk(file); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("file root: expected ErrValidation, got %v", err)
	}
	walker := discovery.NewWalker(nil, nil, discovery.WithLister(failingLister{fail: filepath.Base(root)}))
	if _, err := walker.Walk(root); !errors.Is(err, services.ErrUnreadable) {
		t.Fatalf("unlistable root: expected ErrUnreadable, got %v", err)
	}
}
