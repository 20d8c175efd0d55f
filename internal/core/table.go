package core

import "strings"

// Table is the canonical in-memory representation of a tabular source.
// Every row holds exactly len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.Header)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HeaderLine returns the header joined with commas, the form used for
// exact-match header contracts.
func (t *Table) HeaderLine() string {
	return strings.Join(t.Header, ",")
}

// checkShape returns the index of the first row whose length differs from
// the header width, or -1 if the table is rectangular.
func (t *Table) checkShape() int {
	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			return i
		}
	}
	return -1
}

// fitRow pads row with empty cells or truncates it so it holds exactly
// width cells. The returned bool reports whether non-empty cells were cut.
func fitRow(row []string, width int) ([]string, bool) {
	switch {
	case len(row) == width:
		return row, false
	case len(row) < width:
		padded := make([]string, width)
		copy(padded, row)
		return padded, false
	default:
		lost := false
		for _, v := range row[width:] {
			if strings.TrimSpace(v) != "" {
				lost = true
				break
			}
		}
		return row[:width:width], lost
	}
}

// isEmptyRow reports whether every cell is empty or whitespace.
func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// cloneStrings returns a copy of s that shares no backing array.
func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
