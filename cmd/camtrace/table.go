package main

import (
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableSpec describes one rendered table. Footer is optional and uses the
// same alignment as the body.
type tableSpec struct {
	title   string
	headers []string
	rows    [][]string
	aligns  []columnAlignment
	footer  []string
}

func renderTable(spec tableSpec) string {
	columns := len(spec.headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if spec.title != "" {
		tw.SetTitle(spec.title)
	}

	tw.AppendHeader(toRow(spec.headers, columns))
	for _, row := range spec.rows {
		tw.AppendRow(toRow(row, columns))
	}
	if len(spec.footer) > 0 {
		tw.AppendFooter(toRow(spec.footer, columns))
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(spec.aligns) && spec.aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			AlignFooter: align,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func toRow(values []string, columns int) table.Row {
	r := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		if i < len(values) {
			r[i] = values[i]
		} else {
			r[i] = ""
		}
	}
	return r
}

func formatBytes(size int64) string {
	if size <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(size))
}
