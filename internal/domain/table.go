package domain

import "strings"

// Table is an in-memory snapshot of one input file: a header row plus data
// rows aligned to it. CSV carries no native null, so a cell that trims to the
// empty string is treated as a missing value throughout the pipeline.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Column returns the index of the named header, or false when absent.
func (t Table) Column(name string) (int, bool) {
	for i, header := range t.Headers {
		if header == name {
			return i, true
		}
	}
	return 0, false
}

// Cell returns the trimmed value of the named column for the given row.
// Out-of-range cells read as empty, the same as a missing value.
func (t Table) Cell(row []string, name string) string {
	idx, ok := t.Column(name)
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// IsNull reports whether a cell value counts as missing.
func IsNull(value string) bool {
	return strings.TrimSpace(value) == ""
}
