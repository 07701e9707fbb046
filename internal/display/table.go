package display

import (
	"strings"
	"unicode/utf8"
)

// Table renders aligned columns with a bold header and one optional
// highlighted row.
type Table struct {
	headers   []string
	rows      [][]string
	highlight int // row index, -1 for none
}

func NewTable(headers ...string) *Table {
	return &Table{headers: headers, highlight: -1}
}

func (t *Table) AddRow(values ...string) {
	t.rows = append(t.rows, values)
}

// Highlight marks row idx (0-based) with the accent color.
func (t *Table) Highlight(idx int) {
	t.highlight = idx
}

func (t *Table) Len() int { return len(t.rows) }

// Render returns the table indented by two spaces, one line per row.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("  " + Bold(formatRow(t.headers, widths)) + "\n")

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	sb.WriteString(Dim("  "+strings.Join(sep, "  ")) + "\n")

	for i, row := range t.rows {
		line := formatRow(row, widths)
		if i == t.highlight {
			line = Accent(line)
		}
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = cell + strings.Repeat(" ", w-utf8.RuneCountInString(cell))
	}
	return strings.Join(parts, "  ")
}
