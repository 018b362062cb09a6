package camera

// Phase names a pipeline state. Phases run in declaration order and are
// never re-entered.
type Phase string

const (
	PhaseSidecarScan        Phase = "SIDECAR_SCAN"
	PhaseVideoDiscovery     Phase = "VIDEO_DISCOVERY"
	PhaseMetadataExtraction Phase = "METADATA_EXTRACTION"
	PhaseGrouping           Phase = "GROUPING"
	PhaseMixedDetection     Phase = "MIXED_DETECTION"
	PhaseDone               Phase = "DONE"
)

// Phases lists every phase in execution order.
func Phases() []Phase {
	return []Phase{
		PhaseSidecarScan,
		PhaseVideoDiscovery,
		PhaseMetadataExtraction,
		PhaseGrouping,
		PhaseMixedDetection,
		PhaseDone,
	}
}

// Label returns a human-friendly phase name.
func (p Phase) Label() string {
	switch p {
	case PhaseSidecarScan:
		return "Sidecar scan"
	case PhaseVideoDiscovery:
		return "Video discovery"
	case PhaseMetadataExtraction:
		return "Metadata extraction"
	case PhaseGrouping:
		return "Grouping"
	case PhaseMixedDetection:
		return "Mixed-folder detection"
	case PhaseDone:
		return "Done"
	default:
		return string(p)
	}
}

// ProgressEvent reports pipeline progress. Percent is in [0,100] and never
// decreases across a run.
type ProgressEvent struct {
	Phase       Phase   `json:"phase"`
	Message     string  `json:"message"`
	Percent     float64 `json:"percent"`
	CurrentItem string  `json:"current_item,omitempty"`
}
