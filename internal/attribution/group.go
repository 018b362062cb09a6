package attribution

import (
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"camtrace/internal/camera"
	"camtrace/internal/logging"
	"camtrace/internal/registry"
)

// UnknownFormat labels records with neither a detected format nor an
// extension in the format distribution.
const UnknownFormat = "UNKNOWN"

// Group attributes every record and folds the attributed ones into camera
// groups. Cameras appear in first-attribution order; files within a group
// and unknown files keep the input order. Returned records carry CameraID
// and CameraModel.
func Group(records []camera.MediaRecord, reg *registry.Registry, logger *slog.Logger) ([]camera.CameraGroup, []camera.MediaRecord) {
	if logger == nil {
		logger = logging.NewNop()
	}
	cameras := make([]camera.CameraGroup, 0)
	index := make(map[string]int)
	unknown := make([]camera.MediaRecord, 0)

	for _, rec := range records {
		decision := Attribute(rec, reg)
		if !decision.Attributed() {
			unknown = append(unknown, rec)
			logger.Debug("file unattributed",
				logging.Args(append(logging.DecisionAttrs("attribution", "unknown", unattributedReason(rec)),
					logging.String(logging.FieldFile, rec.Path))...)...)
			continue
		}

		pos, ok := index[decision.Serial]
		if !ok {
			model := decision.Model
			if model == "" {
				model = camera.UnknownModel
			}
			pos = len(cameras)
			index[decision.Serial] = pos
			cameras = append(cameras, camera.CameraGroup{ID: decision.Serial, Model: model, Files: []camera.MediaRecord{}})
		} else if cameras[pos].Model == camera.UnknownModel && decision.Model != "" {
			cameras[pos].Model = decision.Model
		}

		rec.CameraID = decision.Serial
		rec.CameraModel = decision.Model
		if rec.CameraModel == "" {
			rec.CameraModel = cameras[pos].Model
		}
		cameras[pos].Add(rec)

		logger.Debug("file attributed",
			logging.Args(append(logging.DecisionAttrs("attribution", decision.Serial, string(decision.Source)),
				logging.String(logging.FieldFile, rec.Path),
				logging.String("camera_model", rec.CameraModel))...)...)
	}

	// Files attributed before a later record upgraded the group model keep
	// the sentinel; align them with the group.
	for i := range cameras {
		for j := range cameras[i].Files {
			if cameras[i].Files[j].CameraModel == camera.UnknownModel {
				cameras[i].Files[j].CameraModel = cameras[i].Model
			}
		}
	}
	return cameras, unknown
}

func unattributedReason(rec camera.MediaRecord) string {
	if rec.ExtractionError != "" {
		return "metadata extraction failed"
	}
	return "no embedded serial and no descriptor references this path"
}

// ComputeStats summarizes all records regardless of attribution.
func ComputeStats(records []camera.MediaRecord) camera.Stats {
	stats := camera.Stats{FormatDistribution: make(map[string]int)}
	for _, rec := range records {
		stats.TotalFiles++
		if rec.SizeBytes > 0 {
			stats.TotalSizeBytes += rec.SizeBytes
		}
		stats.FormatDistribution[FormatKey(rec)]++
	}
	return stats
}

// FormatKey returns the distribution key for rec: its detected format, or
// the upper-cased extension when the format is unknown.
func FormatKey(rec camera.MediaRecord) string {
	upper := cases.Upper(language.Und)
	if format := strings.TrimSpace(rec.Format); format != "" {
		return upper.String(format)
	}
	if ext := rec.Extension(); ext != "" {
		return upper.String(ext)
	}
	return UnknownFormat
}
