package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"camtrace/internal/config"
	"camtrace/internal/sidecar"
)

type sidecarReport struct {
	Path       string   `json:"path"`
	Kind       string   `json:"kind"`
	Serial     string   `json:"serial,omitempty"`
	Model      string   `json:"model,omitempty"`
	References []string `json:"references,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func newSidecarCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "sidecar <file>...",
		Short: "Parse camera descriptor files and show the identity they carry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			parser := sidecar.New(cfg)

			reports := make([]sidecarReport, 0, len(args))
			for _, arg := range args {
				path, err := config.ExpandPath(strings.TrimSpace(arg))
				if err != nil {
					path = arg
				}
				reports = append(reports, describeSidecar(path, parser.ParseFile(path)))
			}

			if jsonOutput {
				return writeJSON(cmd, reports)
			}
			rows := make([][]string, 0, len(reports))
			for _, r := range reports {
				detail := strconv.Itoa(len(r.References))
				if r.Error != "" {
					detail = r.Error
				}
				rows = append(rows, []string{r.Path, r.Kind, r.Serial, r.Model, detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(tableSpec{
				headers: []string{"File", "Kind", "Serial", "Model", "Refs"},
				rows:    rows,
			}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	return cmd
}

func describeSidecar(path string, result sidecar.Result) sidecarReport {
	r := sidecarReport{Path: path, Kind: string(result.Kind)}
	if result.Record != nil {
		r.Serial = result.Record.SerialNumber
		r.Model = result.Record.Model
		r.References = result.Record.ReferencedVideoPaths
	}
	if result.Err != nil {
		r.Error = result.Err.Error()
	}
	return r
}
