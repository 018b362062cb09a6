// Package sidecar parses camera-written XML descriptors into normalized
// camera identity records.
//
// The schema is chosen by the local name of the document's root element,
// so namespaces and attribute order never matter. Each known shape carries
// its own extraction rule:
//
//   - MediaProfile: serial and model from Properties/System, plus the clip
//     and proxy files listed under Contents/Material
//   - CueUpInfo and DiscMeta: recognized but carry no identity
//   - NonRealTimeMeta, ClipMetadata, CameraMeta: a Device element with
//     serialNo and modelName attributes
//
// Parsing never fails outright. Callers inspect Result.Kind to distinguish
// "has identity" from "parsed but uninformative", "unknown schema", and
// "unparsable" so each case can be logged appropriately.
package sidecar
