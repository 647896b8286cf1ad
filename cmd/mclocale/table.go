package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one table column. Numeric columns are right aligned and
// a non-zero maxWidth soft-wraps long cells such as error details.
type column struct {
	title    string
	numeric  bool
	maxWidth int
}

func col(title string) column    { return column{title: title} }
func numCol(title string) column { return column{title: title, numeric: true} }

func wideCol(title string, maxWidth int) column {
	return column{title: title, maxWidth: maxWidth}
}

// renderTable formats rows under cols. Short rows are padded and extra cells
// are dropped. With no rows the empty message is returned instead of a bare
// header.
func renderTable(cols []column, rows [][]string, empty string) string {
	if len(cols) == 0 {
		return ""
	}
	if len(rows) == 0 && empty != "" {
		return empty
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		header[i] = c.title
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft, Align: text.AlignLeft}
		if c.numeric {
			configs[i].Align = text.AlignRight
		}
		if c.maxWidth > 0 {
			configs[i].WidthMax = c.maxWidth
			configs[i].WidthMaxEnforcer = text.WrapSoft
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(cols))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}
