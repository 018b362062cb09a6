package attribution

import (
	"strings"

	"camtrace/internal/camera"
	"camtrace/internal/registry"
)

// Source names the strategy that attributed a record.
type Source string

const (
	SourceEmbedded Source = "embedded"
	SourcePath     Source = "path"
	SourceNone     Source = ""
)

// Decision is the outcome of resolving one record. Model is empty when
// neither the record nor the registry supplies one.
type Decision struct {
	Serial string
	Model  string
	Source Source
}

// Attributed reports whether a serial was found.
func (d Decision) Attributed() bool {
	return d.Serial != ""
}

// Attribute resolves the owning camera for rec.
func Attribute(rec camera.MediaRecord, reg *registry.Registry) Decision {
	if serial := strings.TrimSpace(rec.EmbeddedSerial); serial != "" {
		return Decision{Serial: serial, Model: backfillModel(rec, reg, serial), Source: SourceEmbedded}
	}
	if serial, ok := reg.LookupPath(rec.Path); ok {
		return Decision{Serial: serial, Model: backfillModel(rec, reg, serial), Source: SourcePath}
	}
	return Decision{}
}

func backfillModel(rec camera.MediaRecord, reg *registry.Registry, serial string) string {
	if model := strings.TrimSpace(rec.EmbeddedModel); model != "" {
		return model
	}
	return reg.ModelFor(serial)
}
