package camera

import (
	"path/filepath"
	"strings"
	"time"
)

// UnknownModel is the model label used when a serial is known but no source
// provided a model name.
const UnknownModel = "Unknown Model"

// IdentityRecord is the normalized camera identity extracted from one
// descriptor file. SerialNumber is never empty.
type IdentityRecord struct {
	SerialNumber         string   `json:"serial_number"`
	Model                string   `json:"model"`
	SourceDescriptorPath string   `json:"source_descriptor_path"`
	ReferencedVideoPaths []string `json:"referenced_video_paths,omitempty"`
}

// Resolution is a video frame size in pixels.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// EmbeddedMetadata is what the metadata extractor decodes from a container.
type EmbeddedMetadata struct {
	Serial          string
	Model           string
	Created         time.Time
	SizeBytes       int64
	DurationSeconds *float64
	Format          string
	Resolution      *Resolution
}

// MediaRecord describes one discovered media file.
//
// CameraID and CameraModel are empty until attribution runs; afterwards they
// hold the resolved identity, or stay empty for unknown files.
type MediaRecord struct {
	Path            string      `json:"path"`
	FileName        string      `json:"file_name"`
	EmbeddedSerial  string      `json:"embedded_serial,omitempty"`
	EmbeddedModel   string      `json:"embedded_model,omitempty"`
	Created         time.Time   `json:"created"`
	SizeBytes       int64       `json:"size_bytes"`
	DurationSeconds *float64    `json:"duration_seconds,omitempty"`
	Format          string      `json:"format,omitempty"`
	Resolution      *Resolution `json:"resolution,omitempty"`
	ExtractionError string      `json:"extraction_error,omitempty"`
	Thumbnail       string      `json:"thumbnail,omitempty"`

	CameraID    string `json:"camera_id,omitempty"`
	CameraModel string `json:"camera_model,omitempty"`
}

// NewMediaRecord builds a record from extracted metadata.
func NewMediaRecord(path string, meta EmbeddedMetadata) MediaRecord {
	return MediaRecord{
		Path:            path,
		FileName:        filepath.Base(path),
		EmbeddedSerial:  strings.TrimSpace(meta.Serial),
		EmbeddedModel:   strings.TrimSpace(meta.Model),
		Created:         meta.Created,
		SizeBytes:       meta.SizeBytes,
		DurationSeconds: meta.DurationSeconds,
		Format:          strings.TrimSpace(meta.Format),
		Resolution:      meta.Resolution,
	}
}

// FailedMediaRecord builds the record for a file whose metadata could not be
// extracted. It carries no serial, size or format.
func FailedMediaRecord(path string, err error) MediaRecord {
	msg := "metadata extraction failed"
	if err != nil {
		msg = err.Error()
	}
	return MediaRecord{
		Path:            path,
		FileName:        filepath.Base(path),
		ExtractionError: msg,
	}
}

// Extension returns the upper-cased file extension without the dot.
func (r MediaRecord) Extension() string {
	return strings.ToUpper(strings.TrimPrefix(filepath.Ext(r.FileName), "."))
}

// Attributed reports whether attribution assigned a camera to the record.
func (r MediaRecord) Attributed() bool {
	return r.CameraID != ""
}

// CameraGroup collects the files attributed to one camera serial.
// TotalSizeBytes always equals the sum of Files[*].SizeBytes.
type CameraGroup struct {
	ID             string        `json:"id"`
	Model          string        `json:"model"`
	Files          []MediaRecord `json:"files"`
	TotalSizeBytes int64         `json:"total_size_bytes"`
}

// Add appends a record and keeps the size total in step.
func (g *CameraGroup) Add(rec MediaRecord) {
	g.Files = append(g.Files, rec)
	if rec.SizeBytes > 0 {
		g.TotalSizeBytes += rec.SizeBytes
	}
}

// MixedFolderReport flags a directory holding files from two or more cameras.
type MixedFolderReport struct {
	Folder        string   `json:"folder"`
	CameraSerials []string `json:"camera_serials"`
}

// Stats summarizes every discovered record regardless of attribution.
type Stats struct {
	TotalFiles         int            `json:"total_files"`
	TotalSizeBytes     int64          `json:"total_size_bytes"`
	FormatDistribution map[string]int `json:"format_distribution"`
}

// DescriptorStats counts how the sidecar scan went.
type DescriptorStats struct {
	Found         int `json:"found"`
	WithIdentity  int `json:"with_identity"`
	Uninformative int `json:"uninformative"`
	Skipped       int `json:"skipped"`
}

// Conflict records an identity registry collision and how it was settled.
type Conflict struct {
	Kind    string `json:"kind"`
	Key     string `json:"key"`
	Kept    string `json:"kept,omitempty"`
	Dropped string `json:"dropped"`
}

// AnalysisResult is the complete output of one run.
type AnalysisResult struct {
	RunID      string    `json:"run_id"`
	Root       string    `json:"root"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Cameras      []CameraGroup       `json:"cameras"`
	UnknownFiles []MediaRecord       `json:"unknown_files"`
	MixedFolders []MixedFolderReport `json:"mixed_folders"`
	Stats        Stats               `json:"stats"`

	Descriptors DescriptorStats `json:"descriptors"`
	Conflicts   []Conflict      `json:"conflicts,omitempty"`
}

// AttributedFiles returns the number of files assigned to a camera.
func (r *AnalysisResult) AttributedFiles() int {
	if r == nil {
		return 0
	}
	total := 0
	for _, cam := range r.Cameras {
		total += len(cam.Files)
	}
	return total
}
