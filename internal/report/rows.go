package report

import (
	"time"

	"camtrace/internal/camera"
)

// UnknownModel labels rows for files no camera could be attributed to.
const UnknownModel = "Unknown"

// Row is one (camera, file) pair.
type Row struct {
	CameraID  string
	Model     string
	FileName  string
	Path      string
	SizeBytes int64
	Created   time.Time
	Format    string
}

// Rows flattens result in camera order then file order. With includeUnknown,
// unattributed files follow with an empty CameraID.
func Rows(result *camera.AnalysisResult, includeUnknown bool) []Row {
	if result == nil {
		return nil
	}
	rows := make([]Row, 0, result.AttributedFiles()+len(result.UnknownFiles))
	for _, cam := range result.Cameras {
		for _, f := range cam.Files {
			model := f.CameraModel
			if model == "" {
				model = cam.Model
			}
			rows = append(rows, rowFor(cam.ID, model, f))
		}
	}
	if includeUnknown {
		for _, f := range result.UnknownFiles {
			rows = append(rows, rowFor("", UnknownModel, f))
		}
	}
	return rows
}

func rowFor(cameraID, model string, f camera.MediaRecord) Row {
	return Row{
		CameraID:  cameraID,
		Model:     model,
		FileName:  f.FileName,
		Path:      f.Path,
		SizeBytes: f.SizeBytes,
		Created:   f.Created,
		Format:    f.Format,
	}
}
