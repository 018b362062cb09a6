package attribution

import (
	"path/filepath"
	"sort"

	"camtrace/internal/camera"
)

// DetectMixed reports every directory that holds attributed files from two
// or more distinct cameras. Unattributed records are ignored. Reports are
// sorted by folder and each serial list is sorted.
func DetectMixed(records []camera.MediaRecord) []camera.MixedFolderReport {
	serialsByDir := make(map[string]map[string]struct{})
	for _, rec := range records {
		if !rec.Attributed() {
			continue
		}
		dir := filepath.Dir(rec.Path)
		set, ok := serialsByDir[dir]
		if !ok {
			set = make(map[string]struct{})
			serialsByDir[dir] = set
		}
		set[rec.CameraID] = struct{}{}
	}

	reports := make([]camera.MixedFolderReport, 0)
	for dir, set := range serialsByDir {
		if len(set) < 2 {
			continue
		}
		serials := make([]string, 0, len(set))
		for serial := range set {
			serials = append(serials, serial)
		}
		sort.Strings(serials)
		reports = append(reports, camera.MixedFolderReport{Folder: dir, CameraSerials: serials})
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Folder < reports[j].Folder })
	return reports
}

// AttributedRecords flattens groups back into one slice in group order.
func AttributedRecords(groups []camera.CameraGroup) []camera.MediaRecord {
	total := 0
	for _, g := range groups {
		total += len(g.Files)
	}
	out := make([]camera.MediaRecord, 0, total)
	for _, g := range groups {
		out = append(out, g.Files...)
	}
	return out
}
