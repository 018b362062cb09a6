package main

import (
	"github.com/spf13/cobra"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "analyze <root>",
		Short: "Attribute every video under root to a camera",
		Long: `Scan root for camera sidecar descriptors and video files, read embedded
metadata, and group the footage by camera serial. Folders holding footage
from more than one camera are reported.

Analysis never modifies the footage. Only a missing or unreadable root makes
the command fail; files that cannot be inspected are listed as unknown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := executeAnalysis(cmd, ctx, args[0], opts)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			renderSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}

	bindRunFlags(cmd, &opts)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full result as JSON")
	return cmd
}
