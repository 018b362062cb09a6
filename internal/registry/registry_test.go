package registry_test

import (
	"path/filepath"
	"strings"
	"testing"

	"camtrace/internal/camera"
	"camtrace/internal/registry"
)

func record(serial, model, source string, refs ...string) camera.IdentityRecord {
	return camera.IdentityRecord{
		SerialNumber:         serial,
		Model:                model,
		SourceDescriptorPath: source,
		ReferencedVideoPaths: refs,
	}
}

func TestBuildIndexesSerialsAndPaths(t *testing.T) {
	root := t.TempDir()
	clip := filepath.Join(root, "card1", "C0001.MXF")
	reg := registry.Build([]camera.IdentityRecord{
		record("S1", "FX6", filepath.Join(root, "card1", "MEDIAPRO.XML"), clip),
		record("S2", "FX3", filepath.Join(root, "card2", "C0001M01.XML")),
	}, registry.PolicyFirst)

	if reg.Len() != 2 {
		t.Fatalf("expected 2 serials, got %d", reg.Len())
	}
	if got := reg.ModelFor("S2"); got != "FX3" {
		t.Fatalf("model for S2 = %q", got)
	}
	serial, ok := reg.LookupPath(filepath.Join(root, "CARD1", "c0001.mxf"))
	if !ok || serial != "S1" {
		t.Fatalf("case-folded lookup = %q, %v", serial, ok)
	}
	if _, ok := reg.LookupPath(filepath.Join(root, "card1", "C0002.MXF")); ok {
		t.Fatal("unexpected match for unreferenced path")
	}
	if len(reg.Conflicts) != 0 {
		t.Fatalf("unexpected conflicts: %+v", reg.Conflicts)
	}
}

func TestBuildConflictPolicies(t *testing.T) {
	shared := filepath.Join(t.TempDir(), "card", "C0001.MP4")
	records := []camera.IdentityRecord{
		record("S1", "First", "/d/a.xml", shared),
		record("S1", "Second", "/d/b.xml"),
		record("S2", "Other", "/d/c.xml", shared),
	}

	tests := []struct {
		policy     registry.ConflictPolicy
		wantModel  string
		wantSerial bool
		wantPath   string
	}{
		{registry.PolicyFirst, "First", true, "S1"},
		{registry.PolicyLast, "Second", true, "S2"},
		{registry.PolicyReject, "", false, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			reg := registry.Build(records, tt.policy)
			rec, ok := reg.LookupSerial("S1")
			if ok != tt.wantSerial {
				t.Fatalf("serial present = %v, want %v", ok, tt.wantSerial)
			}
			if ok && rec.Model != tt.wantModel {
				t.Fatalf("model = %q, want %q", rec.Model, tt.wantModel)
			}
			serial, _ := reg.LookupPath(shared)
			if serial != tt.wantPath {
				t.Fatalf("path owner = %q, want %q", serial, tt.wantPath)
			}
			var serialConflicts, pathConflicts int
			for _, c := range reg.Conflicts {
				switch c.Kind {
				case registry.ConflictSerial:
					serialConflicts++
				case registry.ConflictPath:
					pathConflicts++
				}
			}
			if serialConflicts == 0 || pathConflicts == 0 {
				t.Fatalf("expected both conflict kinds recorded, got %+v", reg.Conflicts)
			}
		})
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	records := []camera.IdentityRecord{
		record("S1", "A", "/d/a.xml", "/v/1.mp4"),
		record("S2", "B", "/d/b.xml", "/v/1.mp4"),
	}
	first := registry.Build(records, registry.PolicyFirst)
	for i := 0; i < 10; i++ {
		again := registry.Build(records, registry.PolicyFirst)
		if serial, _ := again.LookupPath("/v/1.mp4"); serial != "S1" {
			t.Fatalf("iteration %d: owner %q", i, serial)
		}
		if len(again.Conflicts) != len(first.Conflicts) {
			t.Fatalf("iteration %d: conflicts differ", i)
		}
	}
}

func TestBuildSkipsBlankSerialsAndSelfDuplicates(t *testing.T) {
	reg := registry.Build([]camera.IdentityRecord{
		record("  ", "X", "/d/blank.xml", "/v/blank.mp4"),
		record("S1", "A", "/d/a.xml", "/v/1.mp4", "/v/./1.mp4"),
	}, registry.PolicyReject)
	if reg.Len() != 1 {
		t.Fatalf("expected only S1, got %d serials", reg.Len())
	}
	if _, ok := reg.LookupPath("/v/blank.mp4"); ok {
		t.Fatal("blank serial must not index paths")
	}
	if len(reg.Conflicts) != 0 {
		t.Fatalf("a descriptor repeating its own path is not a conflict: %+v", reg.Conflicts)
	}
}

func TestBuildMergesDescriptorsForSameCamera(t *testing.T) {
	clip := filepath.Join(t.TempDir(), "card", "Clip", "C0001.MXF")
	profile := record("S1", "PXW-FX9", "/card/MEDIAPRO.XML", clip)
	perClip := record("S1", "PXW-FX9", "/card/Clip/C0001M01.XML")

	for _, policy := range []registry.ConflictPolicy{registry.PolicyFirst, registry.PolicyLast, registry.PolicyReject} {
		t.Run(string(policy), func(t *testing.T) {
			reg := registry.Build([]camera.IdentityRecord{perClip, profile}, policy)
			if len(reg.Conflicts) != 0 {
				t.Fatalf("agreeing descriptors reported as conflicts: %+v", reg.Conflicts)
			}
			if got := reg.ModelFor("S1"); got != "PXW-FX9" {
				t.Fatalf("model = %q, want PXW-FX9", got)
			}
			if serial, ok := reg.LookupPath(clip); !ok || serial != "S1" {
				t.Fatalf("path owner = %q, %v", serial, ok)
			}
		})
	}
}

func TestBuildBackfillsModelFromLaterDescriptor(t *testing.T) {
	tests := []struct {
		name  string
		first string
		later string
	}{
		{"empty first", "", "ILME-FX6"},
		{"unknown first", camera.UnknownModel, "ILME-FX6"},
		{"empty later", "ILME-FX6", ""},
		{"case differs", "ILME-FX6", "ilme-fx6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registry.Build([]camera.IdentityRecord{
				record("S2", tt.first, "/d/a.xml"),
				record("S2", tt.later, "/d/b.xml"),
			}, registry.PolicyReject)
			if len(reg.Conflicts) != 0 {
				t.Fatalf("unexpected conflicts: %+v", reg.Conflicts)
			}
			rec, ok := reg.LookupSerial("S2")
			if !ok || !strings.EqualFold(rec.Model, "ILME-FX6") {
				t.Fatalf("record = %+v, %v", rec, ok)
			}
			if rec.SourceDescriptorPath != "/d/a.xml" {
				t.Fatalf("source = %q, want the first descriptor", rec.SourceDescriptorPath)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	for input, want := range map[string]registry.ConflictPolicy{
		"":       registry.PolicyFirst,
		"FIRST":  registry.PolicyFirst,
		" last ": registry.PolicyLast,
		"reject": registry.PolicyReject,
	} {
		got, err := registry.ParsePolicy(input)
		if err != nil || got != want {
			t.Fatalf("ParsePolicy(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := registry.ParsePolicy("merge"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestPathKey(t *testing.T) {
	if registry.PathKey("") != "" {
		t.Fatal("empty path should produce empty key")
	}
	a := registry.PathKey("/Footage/Card1/../Card1/CLIP.MP4")
	b := registry.PathKey("/footage/card1/clip.mp4")
	if a != b {
		t.Fatalf("keys differ: %q vs %q", a, b)
	}
}
