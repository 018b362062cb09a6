// Package attribution assigns media records to cameras and aggregates the
// outcome.
//
// Resolution order per file:
//  1. the serial embedded in the container, when present
//  2. the serial of the descriptor that references the file's path
//  3. otherwise the file is unattributed
//
// Embedded identity wins because it is file-local and cannot be invalidated
// by a stale sidecar. Models backfill from the registry when the file lacks
// one. Grouping preserves discovery order for both files and cameras, and
// mixed-folder detection only considers attributed files.
package attribution
