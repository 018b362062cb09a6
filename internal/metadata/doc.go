// Package metadata decodes per-file embedded metadata from video containers.
//
// ProbeExtractor combines a filesystem stat, a magic-byte container sniff,
// and an ffprobe inspection into a camera.EmbeddedMetadata value. Camera
// serials and models are read from well-known format and stream tags.
// Extraction errors are returned to the caller, which records them on the
// media record instead of aborting the run.
package metadata
