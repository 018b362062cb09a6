package attribution_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"camtrace/internal/attribution"
	"camtrace/internal/camera"
	"camtrace/internal/registry"
)

func media(path, serial, model string, size int64, format string) camera.MediaRecord {
	return camera.NewMediaRecord(path, camera.EmbeddedMetadata{
		Serial:    serial,
		Model:     model,
		SizeBytes: size,
		Format:    format,
	})
}

func TestAttributeEmbeddedSerialWinsOverDescriptor(t *testing.T) {
	root := t.TempDir()
	clip := filepath.Join(root, "card1", "C0001.MP4")
	reg := registry.Build([]camera.IdentityRecord{
		{SerialNumber: "S2", Model: "FX3", SourceDescriptorPath: filepath.Join(root, "card1", "MEDIAPRO.XML"), ReferencedVideoPaths: []string{clip}},
	}, registry.PolicyFirst)

	got := attribution.Attribute(media(clip, "S1", "", 10, "MP4"), reg)
	if got.Serial != "S1" || got.Source != attribution.SourceEmbedded {
		t.Fatalf("decision = %+v", got)
	}
	if got.Model != "" {
		t.Fatalf("expected no model for unregistered serial, got %q", got.Model)
	}
}

func TestAttributeFallsBackToDescriptorPath(t *testing.T) {
	root := t.TempDir()
	clip := filepath.Join(root, "card1", "C0001.MXF")
	reg := registry.Build([]camera.IdentityRecord{
		{SerialNumber: "S2", Model: "FX3", SourceDescriptorPath: filepath.Join(root, "card1", "MEDIAPRO.XML"), ReferencedVideoPaths: []string{clip}},
	}, registry.PolicyFirst)

	got := attribution.Attribute(media(clip, "", "", 10, ""), reg)
	if got.Serial != "S2" || got.Model != "FX3" || got.Source != attribution.SourcePath {
		t.Fatalf("decision = %+v", got)
	}

	own := attribution.Attribute(media(clip, "", "Custom", 10, ""), reg)
	if own.Model != "Custom" {
		t.Fatalf("record model should take precedence, got %q", own.Model)
	}

	none := attribution.Attribute(media(filepath.Join(root, "other.mp4"), "", "", 1, ""), reg)
	if none.Attributed() || none.Source != attribution.SourceNone {
		t.Fatalf("expected unattributed, got %+v", none)
	}
}

func TestAttributeNilRegistry(t *testing.T) {
	got := attribution.Attribute(media("/x/a.mp4", "", "", 1, ""), nil)
	if got.Attributed() {
		t.Fatalf("expected unattributed with nil registry, got %+v", got)
	}
	emb := attribution.Attribute(media("/x/a.mp4", "S9", "", 1, ""), nil)
	if emb.Serial != "S9" {
		t.Fatalf("embedded serial should not need a registry, got %+v", emb)
	}
}

func TestGroupOrderModelsAndConservation(t *testing.T) {
	root := t.TempDir()
	card := filepath.Join(root, "card1")
	referenced := filepath.Join(card, "C0003.MXF")
	reg := registry.Build([]camera.IdentityRecord{
		{SerialNumber: "S2", Model: "FX6", SourceDescriptorPath: filepath.Join(card, "MEDIAPRO.XML"), ReferencedVideoPaths: []string{referenced}},
	}, registry.PolicyFirst)

	records := []camera.MediaRecord{
		media(filepath.Join(card, "C0001.MP4"), "S1", "", 100, "MP4"),
		media(referenced, "", "", 300, ""),
		media(filepath.Join(root, "loose.mov"), "", "", 50, "MOV"),
		media(filepath.Join(card, "C0002.MP4"), "S1", "A7S3", 200, "MP4"),
		camera.FailedMediaRecord(filepath.Join(root, "broken.mp4"), nil),
	}

	cameras, unknown := attribution.Group(records, reg, nil)
	if len(cameras) != 2 {
		t.Fatalf("expected 2 cameras, got %d", len(cameras))
	}
	if cameras[0].ID != "S1" || cameras[1].ID != "S2" {
		t.Fatalf("cameras out of first-seen order: %s, %s", cameras[0].ID, cameras[1].ID)
	}
	if cameras[0].Model != "A7S3" {
		t.Fatalf("expected later record to upgrade unknown model, got %q", cameras[0].Model)
	}
	for _, f := range cameras[0].Files {
		if f.CameraModel != "A7S3" || f.CameraID != "S1" {
			t.Fatalf("file %s carries %q/%q", f.FileName, f.CameraID, f.CameraModel)
		}
	}
	if cameras[0].TotalSizeBytes != 300 {
		t.Fatalf("S1 total = %d", cameras[0].TotalSizeBytes)
	}
	if cameras[1].Model != "FX6" || cameras[1].Files[0].CameraModel != "FX6" {
		t.Fatalf("S2 model not backfilled from registry: %+v", cameras[1])
	}
	if len(unknown) != 2 || unknown[0].FileName != "loose.mov" || unknown[1].FileName != "broken.mp4" {
		t.Fatalf("unexpected unknown files: %+v", unknown)
	}
	for _, u := range unknown {
		if u.Attributed() {
			t.Fatalf("unknown file %s marked attributed", u.FileName)
		}
	}

	attributed := attribution.AttributedRecords(cameras)
	if len(attributed)+len(unknown) != len(records) {
		t.Fatalf("records lost: %d + %d != %d", len(attributed), len(unknown), len(records))
	}
}

func TestGroupUnknownModelSentinel(t *testing.T) {
	cameras, _ := attribution.Group([]camera.MediaRecord{
		media("/v/a.mp4", "S7", "", 1, "MP4"),
	}, nil, nil)
	if len(cameras) != 1 || cameras[0].Model != camera.UnknownModel {
		t.Fatalf("expected sentinel model, got %+v", cameras)
	}
	if cameras[0].Files[0].CameraModel != camera.UnknownModel {
		t.Fatalf("file model = %q", cameras[0].Files[0].CameraModel)
	}
}

func TestGroupEmptyInput(t *testing.T) {
	cameras, unknown := attribution.Group(nil, nil, nil)
	if cameras == nil || unknown == nil {
		t.Fatal("expected non-nil empty slices")
	}
	if len(cameras) != 0 || len(unknown) != 0 {
		t.Fatalf("expected empty output, got %d/%d", len(cameras), len(unknown))
	}
}

func TestComputeStatsCountsEveryRecord(t *testing.T) {
	records := []camera.MediaRecord{
		media("/v/a.mp4", "S1", "", 100, "MP4"),
		media("/v/b.mxf", "", "", 40, ""),
		media("/v/c.mp4", "", "", 60, "mp4"),
		camera.FailedMediaRecord("/v/d.mts", nil),
		media("/v/noext", "", "", 5, ""),
	}
	stats := attribution.ComputeStats(records)
	if stats.TotalFiles != 5 {
		t.Fatalf("total files = %d", stats.TotalFiles)
	}
	if stats.TotalSizeBytes != 205 {
		t.Fatalf("total size = %d", stats.TotalSizeBytes)
	}
	want := map[string]int{"MP4": 2, "MXF": 1, "MTS": 1, attribution.UnknownFormat: 1}
	if !reflect.DeepEqual(stats.FormatDistribution, want) {
		t.Fatalf("distribution = %v, want %v", stats.FormatDistribution, want)
	}
}

func TestDetectMixedFolders(t *testing.T) {
	attributed := func(path, serial string) camera.MediaRecord {
		rec := media(path, serial, "", 1, "MP4")
		rec.CameraID = serial
		return rec
	}
	records := []camera.MediaRecord{
		attributed("/v/card1/a.mp4", "S3"),
		attributed("/v/card1/b.mp4", "S1"),
		attributed("/v/card1/c.mp4", "S1"),
		attributed("/v/card2/a.mp4", "S2"),
		media("/v/card2/loose.mp4", "", "", 1, "MP4"),
		attributed("/v/card0/x.mp4", "S2"),
		attributed("/v/card0/y.mp4", "S4"),
	}

	reports := attribution.DetectMixed(records)
	want := []camera.MixedFolderReport{
		{Folder: "/v/card0", CameraSerials: []string{"S2", "S4"}},
		{Folder: "/v/card1", CameraSerials: []string{"S1", "S3"}},
	}
	if !reflect.DeepEqual(reports, want) {
		t.Fatalf("reports = %+v, want %+v", reports, want)
	}
}

func TestDetectMixedIgnoresUnattributed(t *testing.T) {
	rec := media("/v/card/a.mp4", "", "", 1, "MP4")
	other := media("/v/card/b.mp4", "", "", 1, "MP4")
	reports := attribution.DetectMixed([]camera.MediaRecord{rec, other})
	if len(reports) != 0 {
		t.Fatalf("expected no reports, got %+v", reports)
	}
}
