package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// CSVHeader is the column order written by WriteCSV.
var CSVHeader = []string{"camera_id", "model", "file_name", "path", "size_bytes", "created", "format"}

// WriteCSV writes rows with a header line. Created is RFC3339 in UTC, empty
// when unknown.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.CameraID,
			row.Model,
			row.FileName,
			row.Path,
			strconv.FormatInt(row.SizeBytes, 10),
			formatCreated(row.Created),
			row.Format,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row for %s: %w", row.Path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatCreated(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
