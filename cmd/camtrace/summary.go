package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"camtrace/internal/camera"
)

// maxUnknownRows caps the unknown-file table; the full list is in --json.
const maxUnknownRows = 20

func renderSummary(out io.Writer, result *camera.AnalysisResult) {
	fmt.Fprintf(out, "Root: %s\n", result.Root)
	fmt.Fprintf(out, "Files: %d (%s), attributed %d, unknown %d\n",
		result.Stats.TotalFiles,
		formatBytes(result.Stats.TotalSizeBytes),
		result.AttributedFiles(),
		len(result.UnknownFiles),
	)
	fmt.Fprintf(out, "Descriptors: %d found, %d with identity, %d skipped\n",
		result.Descriptors.Found,
		result.Descriptors.WithIdentity,
		result.Descriptors.Skipped,
	)
	fmt.Fprintln(out)

	if len(result.Cameras) == 0 {
		fmt.Fprintln(out, "No cameras identified.")
	} else {
		rows := make([][]string, 0, len(result.Cameras))
		for _, cam := range result.Cameras {
			rows = append(rows, []string{cam.ID, cam.Model, strconv.Itoa(len(cam.Files)), formatBytes(cam.TotalSizeBytes)})
		}
		fmt.Fprintln(out, renderTable(tableSpec{
			title:   "Cameras",
			headers: []string{"Serial", "Model", "Files", "Size"},
			rows:    rows,
			aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
		}))
	}

	if len(result.MixedFolders) > 0 {
		rows := make([][]string, 0, len(result.MixedFolders))
		for _, report := range result.MixedFolders {
			rows = append(rows, []string{report.Folder, strings.Join(report.CameraSerials, ", ")})
		}
		fmt.Fprintln(out, renderTable(tableSpec{
			title:   "Mixed folders",
			headers: []string{"Folder", "Cameras"},
			rows:    rows,
		}))
	}

	if len(result.UnknownFiles) > 0 {
		shown := result.UnknownFiles
		if len(shown) > maxUnknownRows {
			shown = shown[:maxUnknownRows]
		}
		rows := make([][]string, 0, len(shown))
		for _, f := range shown {
			reason := "no identity"
			if f.ExtractionError != "" {
				reason = f.ExtractionError
			}
			rows = append(rows, []string{f.Path, reason})
		}
		spec := tableSpec{
			title:   "Unknown files",
			headers: []string{"Path", "Reason"},
			rows:    rows,
		}
		if hidden := len(result.UnknownFiles) - len(shown); hidden > 0 {
			spec.footer = []string{fmt.Sprintf("+%d more", hidden), ""}
		}
		fmt.Fprintln(out, renderTable(spec))
	}

	if len(result.Stats.FormatDistribution) > 0 {
		formats := make([]string, 0, len(result.Stats.FormatDistribution))
		for format := range result.Stats.FormatDistribution {
			formats = append(formats, format)
		}
		sort.Strings(formats)
		rows := make([][]string, 0, len(formats))
		for _, format := range formats {
			rows = append(rows, []string{format, strconv.Itoa(result.Stats.FormatDistribution[format])})
		}
		fmt.Fprintln(out, renderTable(tableSpec{
			title:   "Formats",
			headers: []string{"Format", "Files"},
			rows:    rows,
			aligns:  []columnAlignment{alignLeft, alignRight},
		}))
	}

	if len(result.Conflicts) > 0 {
		rows := make([][]string, 0, len(result.Conflicts))
		for _, c := range result.Conflicts {
			rows = append(rows, []string{c.Kind, c.Key, c.Kept, c.Dropped})
		}
		fmt.Fprintln(out, renderTable(tableSpec{
			title:   "Descriptor conflicts",
			headers: []string{"Kind", "Key", "Kept", "Dropped"},
			rows:    rows,
		}))
	}
}
