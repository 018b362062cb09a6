// Package main hosts the camtrace CLI entrypoint and command graph.
//
// The Cobra-based command tree runs camera attribution over a footage root,
// exports the result, inspects individual sidecar descriptors, reports tool
// and directory health, and scaffolds configuration. It centralizes
// configuration resolution and logging setup so subcommands only deal with
// presentation.
//
// Keep this package lean: behaviour belongs in the internal packages and is
// surfaced here through dedicated commands or flags.
package main
