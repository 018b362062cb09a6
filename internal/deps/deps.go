// Package deps reports whether the external binaries camtrace shells out to
// are installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"camtrace/internal/config"
)

// Requirement defines an external binary camtrace relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency. Path is the resolved
// executable when Available.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Detail      string
}

// Satisfied reports whether the dependency is available or may be absent.
func (s Status) Satisfied() bool {
	return s.Available || s.Optional
}

// Requirements lists the binaries cfg needs. ffmpeg is only required when
// thumbnail generation is enabled.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	return []Requirement{
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Reads embedded camera serials and container metadata",
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Renders thumbnails when no camera-written one exists",
			Optional:    !cfg.Media.GenerateThumbnails,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = resolved
		results = append(results, status)
	}
	return results
}

// Missing returns the required dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Satisfied() {
			missing = append(missing, s)
		}
	}
	return missing
}
