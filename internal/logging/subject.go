package logging

import (
	"path/filepath"
	"strings"
)

// FormatSubject builds the phase/file subject string used in console output.
// Files are shown by base name; the full path stays available in JSON logs.
func FormatSubject(phase, file string) string {
	phase = strings.TrimSpace(phase)
	file = strings.TrimSpace(file)
	parts := make([]string, 0, 2)
	if phase != "" {
		parts = append(parts, phase)
	}
	if file != "" {
		parts = append(parts, filepath.Base(file))
	}
	return strings.Join(parts, " · ")
}
