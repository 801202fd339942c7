package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "..."

// column describes one column of a text table.
type column struct {
	title string
	right bool
}

// layoutTable renders a header line followed by one line per row. When
// maxWidth is positive and the table is wider, column flex is narrowed (never
// below its title) and its cells are cut with an ellipsis.
func layoutTable(cols []column, rows [][]string, maxWidth, flex int) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := columnWidths(cols, rows)
	if maxWidth > 0 && flex >= 0 && flex < len(widths) {
		total := len(widths) - 1
		for _, w := range widths {
			total += w
		}
		if over := total - maxWidth; over > 0 {
			widths[flex] -= over
			if floor := runewidth.StringWidth(cols[flex].title); widths[flex] < floor {
				widths[flex] = floor
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.title
	}
	lines = append(lines, layoutRow(cols, header, widths))
	for _, row := range rows {
		lines = append(lines, layoutRow(cols, row, widths))
	}
	return lines
}

func columnWidths(cols []column, rows [][]string) []int {
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = runewidth.StringWidth(col.title)
		for _, row := range rows {
			if i < len(row) {
				if w := runewidth.StringWidth(row[i]); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}
	return widths
}

func layoutRow(cols []column, row []string, widths []int) string {
	cells := make([]string, len(cols))
	for i, col := range cols {
		cell := ""
		if i < len(row) {
			cell = runewidth.Truncate(row[i], widths[i], ellipsis)
		}
		if col.right {
			cells[i] = runewidth.FillLeft(cell, widths[i])
		} else {
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
	}
	return strings.Join(cells, " ")
}
