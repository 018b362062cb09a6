package report

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"camtrace/internal/camera"
)

//go:embed schema.sql
var schemaSQL string

// WriteSQLite writes result to a fresh database at path, replacing any
// existing file once the snapshot is complete.
func WriteSQLite(ctx context.Context, path string, result *camera.AnalysisResult) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if result == nil {
		return fmt.Errorf("write sqlite: nil result")
	}
	return replaceFile(path, func(tmp string) error {
		return writeDatabase(ctx, tmp, result)
	})
}

func writeDatabase(ctx context.Context, dbPath string, result *camera.AnalysisResult) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite db: %w", err)
	}
	defer func() { _ = db.Close() }()

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			return fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin export tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := insertRun(ctx, tx, result); err != nil {
		return err
	}
	if err := insertCameras(ctx, tx, result); err != nil {
		return err
	}
	if err := insertFiles(ctx, tx, result); err != nil {
		return err
	}
	if err := insertMixedFolders(ctx, tx, result); err != nil {
		return err
	}
	if err := insertFormats(ctx, tx, result); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit export tx: %w", err)
	}
	return db.Close()
}

func insertRun(ctx context.Context, tx *sql.Tx, result *camera.AnalysisResult) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO run (run_id, root, started_at, finished_at, total_files, total_size_bytes, descriptors_found, descriptors_with_identity)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		result.Root,
		nullableTime(result.StartedAt),
		nullableTime(result.FinishedAt),
		result.Stats.TotalFiles,
		result.Stats.TotalSizeBytes,
		result.Descriptors.Found,
		result.Descriptors.WithIdentity,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func insertCameras(ctx context.Context, tx *sql.Tx, result *camera.AnalysisResult) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO cameras (serial, model, file_count, total_size_bytes) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare camera insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, cam := range result.Cameras {
		if _, err := stmt.ExecContext(ctx, cam.ID, cam.Model, len(cam.Files), cam.TotalSizeBytes); err != nil {
			return fmt.Errorf("insert camera %s: %w", cam.ID, err)
		}
	}
	return nil
}

func insertFiles(ctx context.Context, tx *sql.Tx, result *camera.AnalysisResult) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO files (camera_serial, model, file_name, path, size_bytes, created, format, duration_seconds, width, height, extraction_error, thumbnail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare file insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	insert := func(serial any, model string, f camera.MediaRecord) error {
		var duration, width, height any
		if f.DurationSeconds != nil {
			duration = *f.DurationSeconds
		}
		if f.Resolution != nil {
			width, height = f.Resolution.Width, f.Resolution.Height
		}
		_, err := stmt.ExecContext(ctx,
			serial, model, f.FileName, f.Path, f.SizeBytes,
			nullableTime(f.Created), nullableString(f.Format),
			duration, width, height,
			nullableString(f.ExtractionError), nullableString(f.Thumbnail),
		)
		if err != nil {
			return fmt.Errorf("insert file %s: %w", f.Path, err)
		}
		return nil
	}

	for _, cam := range result.Cameras {
		for _, f := range cam.Files {
			model := f.CameraModel
			if model == "" {
				model = cam.Model
			}
			if err := insert(cam.ID, model, f); err != nil {
				return err
			}
		}
	}
	for _, f := range result.UnknownFiles {
		if err := insert(nil, UnknownModel, f); err != nil {
			return err
		}
	}
	return nil
}

func insertMixedFolders(ctx context.Context, tx *sql.Tx, result *camera.AnalysisResult) error {
	for _, report := range result.MixedFolders {
		for _, serial := range report.CameraSerials {
			if _, err := tx.ExecContext(ctx, `INSERT INTO mixed_folders (folder, camera_serial) VALUES (?, ?)`, report.Folder, serial); err != nil {
				return fmt.Errorf("insert mixed folder %s: %w", report.Folder, err)
			}
		}
	}
	return nil
}

func insertFormats(ctx context.Context, tx *sql.Tx, result *camera.AnalysisResult) error {
	formats := make([]string, 0, len(result.Stats.FormatDistribution))
	for format := range result.Stats.FormatDistribution {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	for _, format := range formats {
		if _, err := tx.ExecContext(ctx, `INSERT INTO stats_formats (format, file_count) VALUES (?, ?)`, format, result.Stats.FormatDistribution[format]); err != nil {
			return fmt.Errorf("insert format %s: %w", format, err)
		}
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// replaceFile runs write against a temporary path beside dest and renames it
// over dest on success.
func replaceFile(dest string, write func(tmp string) error) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp export: %w", err)
	}
	tmp := tmpFile.Name()
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp export: %w", err)
	}
	if err := write(tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", dest, err)
	}
	return nil
}
