// Package report projects an AnalysisResult into flat rows and writes them
// out as CSV or a SQLite snapshot.
//
// Exports are one-shot: every call replaces the destination atomically and
// nothing is read back by later runs. ExportFile serializes concurrent
// writers to the same destination with an advisory lock file.
package report
