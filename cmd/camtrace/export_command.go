package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"camtrace/internal/config"
	"camtrace/internal/report"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions
	var outPath string
	var formatFlag string
	var includeUnknown bool

	cmd := &cobra.Command{
		Use:   "export <root>",
		Short: "Analyze root and write one row per file to CSV or SQLite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target := strings.TrimSpace(outPath)
			if target == "" {
				return errors.New("--out is required")
			}
			target, err = config.ExpandPath(target)
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}

			formatName := cfg.Export.Format
			if cmd.Flags().Changed("format") {
				formatName = formatFlag
			}
			format, err := report.ParseFormat(formatName)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("include-unknown") {
				includeUnknown = cfg.Export.IncludeUnknown
			}

			result, err := executeAnalysis(cmd, ctx, args[0], opts)
			if err != nil {
				return err
			}
			if err := report.ExportFile(cmd.Context(), target, format, result, includeUnknown); err != nil {
				return fmt.Errorf("export: %w", err)
			}

			rows := len(report.Rows(result, includeUnknown))
			if format == report.FormatSQLite {
				rows = result.Stats.TotalFiles
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows (%s) to %s\n", rows, format, target)
			return nil
		},
	}

	bindRunFlags(cmd, &opts)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination file")
	cmd.Flags().StringVar(&formatFlag, "format", "", "Export format: csv or sqlite (default from config)")
	cmd.Flags().BoolVar(&includeUnknown, "include-unknown", false, "Include files without a camera (CSV only)")
	return cmd
}
