package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable renders rows under headers with rounded borders; the last
// column is right-aligned when alignLast is set
func renderTable(headers []string, rows [][]string, alignLast bool) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	if alignLast {
		tw.SetColumnConfigs([]table.ColumnConfig{{
			Number:      columns,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		}})
	}

	return tw.Render()
}
