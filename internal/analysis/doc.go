// Package analysis runs the camera attribution pipeline over one root
// directory.
//
// An Analyzer moves through a fixed phase sequence: sidecar scan, video
// discovery, metadata extraction, grouping, mixed-folder detection, done.
// Each phase consumes the complete output of the previous one. Metadata
// extraction fans out over a bounded worker pool; records are assembled in
// discovery order so grouping is reproducible regardless of scheduling.
//
// Per-file and per-descriptor failures are logged and absorbed. Only
// whole-run failures, such as a missing or unreadable root, abort Run, and
// they surface as *Error with no partial result.
package analysis
