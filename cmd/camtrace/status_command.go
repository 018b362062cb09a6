package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"camtrace/internal/config"
	"camtrace/internal/deps"
	"camtrace/internal/logging"
	"camtrace/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tool availability and directory health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			w := newStatusWriter(cmd.OutOrStdout())

			w.section("Configuration")
			configPath := ctx.configPath
			if !ctx.configExists {
				configPath = "defaults (no file at " + configPath + ")"
			}
			w.line("Config", statusInfo, configPath)
			w.line("Workers", statusInfo, strconv.Itoa(cfg.Analysis.Workers))
			w.line("Collision policy", statusInfo, cfg.Analysis.CollisionPolicy)
			w.line("Thumbnails", statusInfo, yesNo(cfg.Media.GenerateThumbnails))
			w.line("Log file", statusInfo, logFilePath(cfg.Paths.LogDir))

			w.section("Dependencies")
			statuses := preflight.CheckSystemDeps(cfg)
			for _, status := range statuses {
				writeDependencyLine(w, status)
			}
			if probe := statuses[0]; probe.Available {
				version := preflight.CheckToolVersion(cmd.Context(), "FFprobe version", probe.Path)
				kind := statusOK
				if !version.Passed {
					kind = statusWarn
				}
				w.line(version.Name, kind, version.Detail)
			}

			w.section("Directories")
			for _, check := range directoryChecks(cfg) {
				kind := statusOK
				if !check.Passed {
					kind = statusError
				}
				w.line(check.Name, kind, check.Detail)
			}
			return nil
		},
	}
}

func directoryChecks(cfg *config.Config) []preflight.Result {
	checks := []preflight.Result{preflight.CheckDirectoryAccess("Log directory", cfg.Paths.LogDir)}
	if cfg.Media.GenerateThumbnails {
		checks = append(checks, preflight.CheckDirectoryAccess("Thumbnail directory", cfg.Paths.ThumbnailDir))
	}
	return checks
}

func writeDependencyLine(w *statusWriter, status deps.Status) {
	switch {
	case status.Available:
		w.line(status.Name, statusOK, status.Path)
	case status.Optional:
		w.line(status.Name, statusWarn, fmt.Sprintf("%s (optional: %s)", status.Detail, status.Description))
	default:
		w.line(status.Name, statusError, fmt.Sprintf("%s (%s)", status.Detail, status.Description))
	}
}

func logFilePath(logDir string) string {
	if strings.TrimSpace(logDir) == "" {
		return "stderr only"
	}
	return filepath.Join(logDir, logging.LogFileName)
}
