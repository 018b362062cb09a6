package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"camtrace/internal/config"
	"camtrace/internal/testsupport"
)

// probeStub answers like ffprobe and reports serial S3 for any path
// containing A001.
const probeStub = `#!/bin/sh
if [ "$1" = "-version" ]; then
  echo "ffprobe version 7.1-stub"
  exit 0
fi
for last; do :; done
case "$last" in
  *A001*) serial="S3" ;;
  *) serial="" ;;
esac
cat <<JSON
{"streams":[{"index":0,"codec_type":"video","width":1920,"height":1080}],"format":{"format_name":"mov,mp4","duration":"2.5","tags":{"serial_number":"$serial"}}}
JSON
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("ffprobe", probeStub))
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("CAMTRACE_FFPROBE", "")
	t.Setenv("CAMTRACE_LOG_LEVEL", "")

	configPath := filepath.Join(homeDir, ".config", "camtrace", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
log_dir = %q
thumbnail_dir = %q

[analysis]
workers = %d

[media]
ffprobe_binary = "ffprobe"

[logging]
level = "error"
`, cfg.Paths.LogDir, cfg.Paths.ThumbnailDir, cfg.Analysis.Workers)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// writeFootage lays out card1 with a MediaProfile for S1 covering two
// clips, an S3 clip in the same folder, and one unattributable clip.
func writeFootage(t *testing.T, root string) {
	t.Helper()
	clips := []string{
		filepath.Join(root, "card1", "C0001.MP4"),
		filepath.Join(root, "card1", "C0002.MP4"),
	}
	for _, clip := range clips {
		testsupport.WriteFile(t, clip, 1024)
	}
	testsupport.WriteMediaProfile(t, filepath.Join(root, "card1", "MEDIAPRO.XML"), "S1", "PXW-FX9", clips...)
	testsupport.WriteFile(t, filepath.Join(root, "card1", "A001.MP4"), 512)
	testsupport.WriteFile(t, filepath.Join(root, "misc", "B001.MOV"), 256)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
