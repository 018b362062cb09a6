// Package registry folds descriptor identity records into the serial and
// path indexes used by attribution.
package registry

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"camtrace/internal/camera"
)

// ConflictPolicy decides which claimant wins when two descriptors declare the
// same serial or reference the same media path.
type ConflictPolicy string

const (
	// PolicyFirst keeps the first record in descriptor order.
	PolicyFirst ConflictPolicy = "first"
	// PolicyLast keeps the last record in descriptor order.
	PolicyLast ConflictPolicy = "last"
	// PolicyReject drops the key entirely so neither claimant is trusted.
	PolicyReject ConflictPolicy = "reject"
)

// Conflict kinds recorded in Registry.Conflicts.
const (
	ConflictSerial = "serial"
	ConflictPath   = "path"
)

// ParsePolicy validates a policy name. An empty name selects PolicyFirst.
func ParsePolicy(value string) (ConflictPolicy, error) {
	switch ConflictPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyFirst:
		return PolicyFirst, nil
	case PolicyLast:
		return PolicyLast, nil
	case PolicyReject:
		return PolicyReject, nil
	default:
		return "", fmt.Errorf("unknown collision policy %q (want first, last, or reject)", value)
	}
}

// Registry is the per-run identity index. Serials maps a serial number to
// its descriptor record; Paths maps a canonical path key to a serial.
type Registry struct {
	Serials   map[string]camera.IdentityRecord
	Paths     map[string]string
	Conflicts []camera.Conflict
}

// Build indexes records in the given order under policy. Callers supply
// records in a total order (sorted descriptor paths) so every policy is
// deterministic.
func Build(records []camera.IdentityRecord, policy ConflictPolicy) *Registry {
	if policy == "" {
		policy = PolicyFirst
	}
	reg := &Registry{
		Serials: make(map[string]camera.IdentityRecord, len(records)),
		Paths:   make(map[string]string),
	}
	rejectedSerials := make(map[string]struct{})
	rejectedPaths := make(map[string]struct{})

	for _, rec := range records {
		serial := strings.TrimSpace(rec.SerialNumber)
		if serial == "" {
			continue
		}
		rec.SerialNumber = serial

		reg.addSerial(rec, policy, rejectedSerials)

		for _, ref := range rec.ReferencedVideoPaths {
			key := PathKey(ref)
			if key == "" {
				continue
			}
			if _, rejected := rejectedPaths[key]; rejected {
				reg.recordConflict(ConflictPath, key, "", serial)
				continue
			}
			existing, ok := reg.Paths[key]
			if !ok {
				reg.Paths[key] = serial
				continue
			}
			if existing == serial {
				continue
			}
			switch policy {
			case PolicyLast:
				reg.Paths[key] = serial
				reg.recordConflict(ConflictPath, key, serial, existing)
			case PolicyReject:
				delete(reg.Paths, key)
				rejectedPaths[key] = struct{}{}
				reg.recordConflict(ConflictPath, key, "", existing)
				reg.recordConflict(ConflictPath, key, "", serial)
			default:
				reg.recordConflict(ConflictPath, key, existing, serial)
			}
		}
	}
	return reg
}

// mergeSameCamera reports whether two records for one serial describe the
// same camera: equal models, or a model on at most one side. A card's
// MEDIAPRO.XML and its per-clip descriptors repeat the serial this way. The
// merged record keeps existing's source and takes the first real model.
func mergeSameCamera(existing, rec camera.IdentityRecord) (camera.IdentityRecord, bool) {
	have, incoming := knownModel(existing.Model), knownModel(rec.Model)
	if have != "" && incoming != "" && !strings.EqualFold(have, incoming) {
		return existing, false
	}
	if have == "" && incoming != "" {
		existing.Model = incoming
	}
	return existing, true
}

func knownModel(model string) string {
	model = strings.TrimSpace(model)
	if model == camera.UnknownModel {
		return ""
	}
	return model
}

// addSerial indexes rec under its serial. Records agreeing on the camera are
// merged silently; only differing models are settled by policy.
func (r *Registry) addSerial(rec camera.IdentityRecord, policy ConflictPolicy, rejected map[string]struct{}) {
	serial := rec.SerialNumber
	if _, ok := rejected[serial]; ok {
		r.recordConflict(ConflictSerial, serial, "", rec.SourceDescriptorPath)
		return
	}
	existing, ok := r.Serials[serial]
	if !ok {
		r.Serials[serial] = rec
		return
	}
	if merged, same := mergeSameCamera(existing, rec); same {
		r.Serials[serial] = merged
		return
	}
	switch policy {
	case PolicyLast:
		r.Serials[serial] = rec
		r.recordConflict(ConflictSerial, serial, rec.SourceDescriptorPath, existing.SourceDescriptorPath)
	case PolicyReject:
		delete(r.Serials, serial)
		rejected[serial] = struct{}{}
		r.recordConflict(ConflictSerial, serial, "", existing.SourceDescriptorPath)
		r.recordConflict(ConflictSerial, serial, "", rec.SourceDescriptorPath)
	default:
		r.recordConflict(ConflictSerial, serial, existing.SourceDescriptorPath, rec.SourceDescriptorPath)
	}
}

func (r *Registry) recordConflict(kind, key, kept, dropped string) {
	r.Conflicts = append(r.Conflicts, camera.Conflict{Kind: kind, Key: key, Kept: kept, Dropped: dropped})
}

// LookupSerial returns the descriptor record for serial.
func (r *Registry) LookupSerial(serial string) (camera.IdentityRecord, bool) {
	if r == nil {
		return camera.IdentityRecord{}, false
	}
	rec, ok := r.Serials[strings.TrimSpace(serial)]
	return rec, ok
}

// LookupPath returns the serial whose descriptor references path.
func (r *Registry) LookupPath(path string) (string, bool) {
	if r == nil {
		return "", false
	}
	serial, ok := r.Paths[PathKey(path)]
	return serial, ok
}

// ModelFor returns the registry model for serial, or "" when unknown.
func (r *Registry) ModelFor(serial string) string {
	rec, ok := r.LookupSerial(serial)
	if !ok {
		return ""
	}
	return rec.Model
}

// Len returns the number of indexed serials.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Serials)
}

// PathKey returns the canonical comparison key for a media path: absolute,
// cleaned, forward-slash separated and Unicode case-folded. A Caser is not
// safe for concurrent use, so each call builds its own.
func PathKey(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	path = filepath.ToSlash(filepath.Clean(path))
	return cases.Fold().String(path)
}
