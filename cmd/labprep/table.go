package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"labprep/internal/label"
)

// column describes one table column. Numeric columns are right-aligned.
type column struct {
	header  string
	numeric bool
}

func textCol(header string) column { return column{header: header} }
func numCol(header string) column  { return column{header: header, numeric: true} }

// labelTable renders rows under columns. An optional footer (for totals) is
// padded or trimmed to the column count like every row.
type labelTable struct {
	columns []column
	rows    [][]string
	footer  []string
}

func newLabelTable(columns ...column) *labelTable {
	return &labelTable{columns: columns}
}

func (t *labelTable) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *labelTable) total(cells ...string) {
	t.footer = cells
}

func (t *labelTable) empty() bool {
	return len(t.rows) == 0
}

func (t *labelTable) fit(cells []string) table.Row {
	row := make(table.Row, len(t.columns))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

func (t *labelTable) String() string {
	if len(t.columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	header := make([]string, len(t.columns))
	configs := make([]table.ColumnConfig, len(t.columns))
	for i, col := range t.columns {
		header[i] = col.header
		align := text.AlignLeft
		if col.numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignFooter: align,
			AlignHeader: text.AlignLeft,
		}
	}
	tw.AppendHeader(t.fit(header))
	for _, cells := range t.rows {
		tw.AppendRow(t.fit(cells))
	}
	if t.footer != nil {
		tw.AppendFooter(t.fit(t.footer))
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// msCell renders ticks as signed milliseconds with one decimal.
func msCell(ticks label.Ticks) string {
	return strconv.FormatFloat(ticks.Milliseconds(), 'f', 1, 64)
}

// bandCell renders a closed drift band in milliseconds.
func bandCell(lower, upper label.Ticks) string {
	return "[" + msCell(lower) + ", " + msCell(upper) + "]"
}

func percentCell(percent float64) string {
	return fmt.Sprintf("%.1f%%", percent)
}

func countCell(n int) string {
	return strconv.Itoa(n)
}

func timeCell(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
