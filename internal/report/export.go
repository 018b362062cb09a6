package report

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"camtrace/internal/camera"
	"camtrace/internal/services"
)

// Format selects the export writer.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

const lockRetryDelay = 50 * time.Millisecond

// ParseFormat validates a format name.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatSQLite, "db":
		return FormatSQLite, nil
	default:
		return "", services.Wrap(services.ErrValidation, "report", "parse format", fmt.Sprintf("unsupported export format %q", value), nil)
	}
}

// ExportFile writes result to path in format while holding <path>.lock.
// includeUnknown only affects CSV; the SQLite snapshot always carries every
// file.
func ExportFile(ctx context.Context, path string, format Format, result *camera.AnalysisResult, includeUnknown bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return services.Wrap(services.ErrValidation, "report", "export", "output path is required", nil)
	}
	if result == nil {
		return services.Wrap(services.ErrValidation, "report", "export", "no analysis result", nil)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire export lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquire export lock: %s is busy", path)
	}
	defer func() { _ = lock.Unlock() }()

	switch format {
	case FormatCSV:
		return replaceFile(path, func(tmp string) error {
			return writeCSVFile(tmp, Rows(result, includeUnknown))
		})
	case FormatSQLite:
		return WriteSQLite(ctx, path, result)
	default:
		return services.Wrap(services.ErrValidation, "report", "export", fmt.Sprintf("unsupported export format %q", format), nil)
	}
}

func writeCSVFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}
	return nil
}
