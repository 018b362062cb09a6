package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"camtrace/internal/camera"
	"camtrace/internal/config"
	"camtrace/internal/logging"
	"camtrace/internal/media/ffprobe"
	"camtrace/internal/services"
)

// Extractor decodes embedded metadata for one media file.
type Extractor interface {
	Extract(ctx context.Context, path string) (camera.EmbeddedMetadata, error)
}

// ProbeFunc runs an ffprobe inspection. It matches ffprobe.Inspect.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Tag keys consulted in order, case-insensitively.
var (
	SerialTagKeys = []string{
		"serial_number",
		"serialnumber",
		"camera_serial_number",
		"com.apple.quicktime.camera.serialnumber",
		"com.sony.serialno",
	}
	ModelTagKeys = []string{
		"model",
		"com.apple.quicktime.model",
		"com.android.model",
		"camera_model_name",
	}
)

// headerSize is how many leading bytes the container sniff needs.
const headerSize = 262

// ProbeExtractor implements Extractor with os.Stat, filetype and ffprobe.
type ProbeExtractor struct {
	binary  string
	timeout time.Duration
	probe   ProbeFunc
	logger  *slog.Logger
}

// ProbeOption customizes a ProbeExtractor.
type ProbeOption func(*ProbeExtractor)

// WithProbeFunc replaces the ffprobe invocation, mainly for tests.
func WithProbeFunc(fn ProbeFunc) ProbeOption {
	return func(e *ProbeExtractor) {
		if fn != nil {
			e.probe = fn
		}
	}
}

// NewProbeExtractor builds an extractor from the media settings in cfg.
func NewProbeExtractor(cfg *config.Config, logger *slog.Logger, opts ...ProbeOption) *ProbeExtractor {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	e := &ProbeExtractor{
		binary:  cfg.FFprobeBinary(),
		timeout: time.Duration(cfg.Media.ProbeTimeoutSeconds) * time.Second,
		probe:   ffprobe.Inspect,
		logger:  logging.NewComponentLogger(logger, "metadata"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract implements Extractor.
func (e *ProbeExtractor) Extract(ctx context.Context, path string) (camera.EmbeddedMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		marker := services.ErrUnreadable
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return camera.EmbeddedMetadata{}, services.Wrap(marker, "metadata", "stat", "Cannot stat media file", err)
	}
	if info.IsDir() {
		return camera.EmbeddedMetadata{}, services.Wrap(services.ErrValidation, "metadata", "stat", "Path is a directory", nil)
	}

	format, err := sniffFormat(path)
	if err != nil {
		return camera.EmbeddedMetadata{}, services.Wrap(services.ErrUnreadable, "metadata", "read header", "Cannot read media header", err)
	}

	probeCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	result, err := e.probe(probeCtx, e.binary, path)
	if err != nil {
		return camera.EmbeddedMetadata{}, services.Wrap(services.ErrExternalTool, "metadata", "ffprobe", "ffprobe failed", err)
	}
	if result.VideoStreamCount() == 0 {
		return camera.EmbeddedMetadata{}, services.Wrap(services.ErrValidation, "metadata", "ffprobe", "Container has no video stream", nil)
	}

	meta := camera.EmbeddedMetadata{
		Serial:    result.Tag(SerialTagKeys...),
		Model:     result.Tag(ModelTagKeys...),
		Created:   info.ModTime().UTC(),
		SizeBytes: info.Size(),
		Format:    format,
	}
	if created, ok := result.CreationTime(); ok {
		meta.Created = created.UTC()
	}
	if duration, ok := result.DurationSeconds(); ok {
		meta.DurationSeconds = &duration
	}
	if stream, ok := result.FirstVideoStream(); ok {
		meta.Resolution = &camera.Resolution{Width: stream.Width, Height: stream.Height}
	}
	if meta.Format == "" {
		meta.Format = FormatFromExtension(path)
	}

	e.logger.Debug("metadata extracted",
		logging.String(logging.FieldFile, path),
		logging.String("serial", meta.Serial),
		logging.String("model", meta.Model),
		logging.String("format", meta.Format),
		logging.Int64("size_bytes", meta.SizeBytes),
	)
	return meta, nil
}

// sniffFormat matches the file header against known container signatures.
// It returns "" when the container is not recognized.
func sniffFormat(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	header := make([]byte, headerSize)
	n, err := io.ReadFull(file, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read header: %w", err)
	}
	kind, err := filetype.Match(header[:n])
	if err != nil || kind == filetype.Unknown {
		return "", nil
	}
	return upper(kind.Extension), nil
}

// FormatFromExtension returns the upper-cased extension of path without the
// dot, or "" when there is none.
func FormatFromExtension(path string) string {
	return upper(strings.TrimPrefix(filepath.Ext(path), "."))
}

func upper(value string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(value))
}
