package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"camtrace/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ThumbnailDir = filepath.Join(base, "thumbnails")
	cfgVal.Analysis.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithWorkers overrides the extraction worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Analysis.Workers = n
	}
}

// WithCollisionPolicy overrides the registry collision policy.
func WithCollisionPolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Analysis.CollisionPolicy = policy
	}
}

// WithStubbedBinaries writes stub executables that exit 0 for the provided
// names and prepends them to PATH. If names is empty, ffprobe and ffmpeg are
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffprobe", "ffmpeg"}
		}
		for _, name := range names {
			WithStubScript(name, "#!/bin/sh\nexit 0\n")(b)
		}
	}
}

// WithStubScript installs an executable shell script named name in the
// config's bin directory and prepends that directory to PATH.
func WithStubScript(name, script string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, name)
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			b.t.Fatalf("write stub %s: %v", name, err)
		}
		path := os.Getenv("PATH")
		if !containsPathEntry(path, binDir) {
			b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+path)
		}
	}
}

func containsPathEntry(pathList, dir string) bool {
	for _, entry := range filepath.SplitList(pathList) {
		if entry == dir {
			return true
		}
	}
	return false
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
