// Package services defines the small set of helpers every analysis stage and
// external collaborator shares.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, phase names, and the file
//     currently being processed so log lines can be correlated.
//   - Structured error markers plus the Wrap helper, letting callers classify
//     failures with errors.Is (missing input vs invalid configuration vs an
//     external tool misbehaving).
//
// Use these helpers when wiring new collaborators so failure classification
// and observability stay uniform across the pipeline.
package services
