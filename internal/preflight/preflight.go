package preflight

import (
	"context"
	"fmt"
	"strings"

	"camtrace/internal/config"
	"camtrace/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks relevant to analyzing root with cfg. An empty
// root skips the root check.
func RunAll(ctx context.Context, cfg *config.Config, root string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if strings.TrimSpace(root) != "" {
		results = append(results, CheckReadableDirectory("Analysis root", root))
	}

	statuses := CheckSystemDeps(cfg)
	for _, status := range statuses {
		results = append(results, resultFromStatus(status))
	}
	if probe := statuses[0]; probe.Available {
		results = append(results, CheckToolVersion(ctx, "FFprobe version", probe.Path))
	}

	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	if cfg.Media.GenerateThumbnails {
		results = append(results, CheckDirectoryAccess("Thumbnail directory", cfg.Paths.ThumbnailDir))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

func resultFromStatus(status deps.Status) Result {
	switch {
	case status.Available:
		return Result{Name: status.Name, Passed: true, Detail: status.Path}
	case status.Optional:
		return Result{Name: status.Name, Passed: true, Detail: fmt.Sprintf("optional, %s", status.Detail)}
	default:
		return Result{Name: status.Name, Detail: status.Detail}
	}
}
