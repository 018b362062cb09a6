package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"camtrace/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckReadableDirectory("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckReadableDirectory_NoListPermission(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission bits")
	}
	dir := filepath.Join(t.TempDir(), "locked")
	if err := os.Mkdir(dir, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	result := CheckReadableDirectory("root", dir)
	if result.Passed {
		t.Fatal("expected failure for unreadable dir")
	}
}

func TestCheckToolVersion(t *testing.T) {
	testsupport.NewConfig(t, testsupport.WithStubScript("ffprobe", "#!/bin/sh\necho 'ffprobe version 7.1 Copyright'\necho 'built with gcc'\n"))

	result := CheckToolVersion(context.Background(), "FFprobe version", "ffprobe")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result.Detail != "ffprobe version 7.1 Copyright" {
		t.Fatalf("detail = %q", result.Detail)
	}

	failing := CheckToolVersion(context.Background(), "x", "clearly-not-present-binary")
	if failing.Passed {
		t.Fatal("expected failure for missing binary")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}
	root := t.TempDir()

	results := RunAll(context.Background(), cfg, root)
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %#v", failed)
	}
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	joined := strings.Join(names, ",")
	for _, want := range []string{"Analysis root", "FFprobe", "FFmpeg", "FFprobe version", "Log directory"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %s check in %s", want, joined)
		}
	}

	missing := RunAll(context.Background(), cfg, filepath.Join(root, "absent"))
	if len(Failed(missing)) != 1 {
		t.Fatalf("expected only the root check to fail, got %#v", Failed(missing))
	}
}

func TestRunAllReportsMissingProbe(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Media.FFprobeBinary = "clearly-not-present-ffprobe"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	failed := Failed(RunAll(context.Background(), cfg, ""))
	if len(failed) == 0 || failed[0].Name != "FFprobe" {
		t.Fatalf("expected ffprobe failure, got %#v", failed)
	}
}
