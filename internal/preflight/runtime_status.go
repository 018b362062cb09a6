package preflight

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const versionTimeout = 5 * time.Second

// CheckToolVersion runs "<binary> -version" and reports the first output
// line. ffprobe and ffmpeg both answer this flag.
func CheckToolVersion(ctx context.Context, name, binary string) Result {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return Result{Name: name, Detail: "command not configured"}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	checkCtx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	output, err := exec.CommandContext(checkCtx, binary, "-version").Output()
	if err != nil {
		if checkCtx.Err() != nil {
			return Result{Name: name, Detail: "version check timed out"}
		}
		return Result{Name: name, Detail: fmt.Sprintf("version check failed (%v)", err)}
	}
	line := firstLine(string(output))
	if line == "" {
		line = "version unknown"
	}
	return Result{Name: name, Passed: true, Detail: line}
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
