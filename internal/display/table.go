package display

import (
	"strings"
	"unicode/utf8"
)

// unavailable is how schedules print a time the sun never reaches.
const unavailable = "--:--"

// Table lays out schedule rows under bold headers. Cells holding "--:--"
// are muted and one row (usually today) can be highlighted.
type Table struct {
	headers   []string
	rows      [][]string
	highlight int
}

// NewTable returns an empty table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{headers: headers, highlight: -1}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(values []string) {
	t.rows = append(t.rows, values)
}

// SetHighlightRow highlights the 0-based row idx; -1 clears it.
func (t *Table) SetHighlightRow(idx int) {
	t.highlight = idx
}

// Render returns the table indented by two spaces, one line per row.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}
	widths := t.widths()

	var sb strings.Builder
	sb.WriteString("  " + Bold(pad(t.headers, widths)) + "\n")

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}
	sb.WriteString("  " + Dim(strings.Join(rule, "  ")) + "\n")

	for i, row := range t.rows {
		if i == t.highlight {
			sb.WriteString("  " + Accent(pad(row, widths)) + "\n")
			continue
		}
		sb.WriteString("  " + t.plainRow(row, widths) + "\n")
	}
	return sb.String()
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], utf8.RuneCountInString(row[i]))
		}
	}
	return widths
}

// plainRow pads each cell separately so unavailable times can be muted
// without breaking the alignment.
func (t *Table) plainRow(row []string, widths []int) string {
	cells := make([]string, len(widths))
	for i, w := range widths {
		cell := cellAt(row, i)
		padded := cell + strings.Repeat(" ", w-utf8.RuneCountInString(cell))
		if cell == unavailable {
			padded = Gray(padded)
		}
		cells[i] = padded
	}
	return strings.Join(cells, "  ")
}

// pad left-aligns cells to widths, counting runes so that transliterated
// names line up.
func pad(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := cellAt(cells, i)
		parts[i] = cell + strings.Repeat(" ", w-utf8.RuneCountInString(cell))
	}
	return strings.Join(parts, "  ")
}

func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}
