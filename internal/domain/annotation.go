package domain

import "strings"

// Issue tags one data-quality problem found in a row. Tags are accumulated
// in rule-evaluation order and serialized only at the output boundary.
type Issue string

const (
	IssueInvalidPhone Issue = "invalid_phone"
	IssueNullName     Issue = "null_name"
	IssueNullPhone    Issue = "null_phone"
	IssueNullLocation Issue = "null_location"
)

// NullIssue builds the tag for a missing required field.
func NullIssue(field string) Issue {
	return Issue("null_" + field)
}

// FormatIssues renders the wire form of an issue list: every tag followed by
// a semicolon, e.g. "invalid_phone;null_name;". An empty list renders as "".
func FormatIssues(issues []Issue) string {
	if len(issues) == 0 {
		return ""
	}
	var b strings.Builder
	for _, issue := range issues {
		b.WriteString(string(issue))
		b.WriteByte(';')
	}
	return b.String()
}

// Annotation is the partial outcome of one validation rule applied to one
// row: zero or more issue tags plus field rewrites (cleaned values).
type Annotation struct {
	Issues   []Issue
	Rewrites map[string]string
}

// AnnotatedTable pairs a cleaned table with per-row issue lists. Rows and
// Issues have equal length; a row is bad iff its issue list is non-empty.
type AnnotatedTable struct {
	Table
	Issues [][]Issue
}

// IsBad reports whether the row at index i accumulated any issue.
func (t AnnotatedTable) IsBad(i int) bool {
	return len(t.Issues[i]) > 0
}
