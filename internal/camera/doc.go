// Package camera holds the data model shared by every analysis stage.
//
// Records flow one way through a run: descriptors become IdentityRecords,
// discovered files become MediaRecords, and the attribution stage folds both
// into CameraGroups, unknown files, and MixedFolderReports inside a single
// AnalysisResult. Nothing here is retained between runs.
//
// Types are plain values with JSON tags so the CLI can emit a run result
// verbatim; behaviour lives in the stage packages (sidecar, registry,
// attribution, analysis) rather than on these structs.
package camera
