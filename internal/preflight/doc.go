// Package preflight provides readiness checks for the binaries and
// directories camtrace depends on.
//
// These checks run in two contexts:
//   - The analyze and export commands call RunAll before a run and warn
//     when something is missing. Analysis still proceeds; files that cannot
//     be probed land in the unknown bucket.
//   - The CLI "camtrace status" command uses the individual checks to
//     display tool and directory health.
//
// Thumbnail checks are gated by media.generate_thumbnails.
package preflight
