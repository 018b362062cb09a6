// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties and tags
//   - Format: container-level metadata (duration, size, tags)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
//
// Helper methods on Result expose the first video stream, duration parsing,
// the container creation time, and case-insensitive tag lookup across the
// format and stream tag maps where cameras record serial numbers and models.
package ffprobe
