// Package quality applies the fixed data-quality rule set to an in-memory
// table. Each rule is a pure function from a row to a partial annotation
// (issue tags plus cleaned field values); the engine folds the rules over
// every row in a fixed order, applying each rule's rewrites before the next
// rule runs. The fold order matters: the required-field check on phone must
// see the value the phone rule already cleaned, so a malformed phone is
// tagged invalid_phone but never null_phone.
package quality

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rpattn/dataqc/internal/domain"
)

// PhoneInvalidValue is the sentinel written in place of a malformed phone.
const PhoneInvalidValue = "invalid"

var (
	// requiredFields must be non-null in every row; checked in this order.
	requiredFields = []string{"name", "phone", "location"}

	// descriptiveFields are sanitized but never flagged.
	descriptiveFields = []string{"address", "reviews_list"}

	// requiredColumns must exist in the input header for the file to be
	// processable at all.
	requiredColumns = []string{"name", "phone", "location", "address", "reviews_list"}

	// descriptivePattern matches everything stripped from descriptive
	// fields. Letters and digits in any script, underscores, whitespace,
	// and commas survive; \w alone would be ASCII-only here.
	descriptivePattern = regexp.MustCompile(`[^\p{L}\p{N}_\s,]`)

	phoneReplacer = strings.NewReplacer("+", "", " ", "")
)

// SchemaError reports an input table missing a required column. It aborts
// processing of that file only.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("input is missing required column %q", e.Column)
}

// Rule produces a partial annotation for one row. Rules must not mutate the
// row; cleaned values are returned as rewrites.
type Rule func(t domain.Table, row []string) domain.Annotation

// Engine folds the rule set over every row of a table.
type Engine struct {
	rules []Rule
}

// NewEngine returns an engine with the fixed rule set in evaluation order.
func NewEngine() *Engine {
	return &Engine{rules: []Rule{PhoneRule, RequiredFieldsRule, DescriptiveFieldsRule}}
}

// Annotate validates and cleans every row of t, returning a new table with
// rewrites applied and a per-row issue list. The input table is not
// modified. Malformed cell values are a classification outcome, never an
// error; the only failure is a missing required column.
func (e *Engine) Annotate(t domain.Table) (domain.AnnotatedTable, error) {
	for _, column := range requiredColumns {
		if _, ok := t.Column(column); !ok {
			return domain.AnnotatedTable{}, &SchemaError{Column: column}
		}
	}

	annotated := domain.AnnotatedTable{
		Table: domain.Table{
			Headers: append([]string{}, t.Headers...),
			Rows:    make([][]string, len(t.Rows)),
		},
		Issues: make([][]domain.Issue, len(t.Rows)),
	}

	for i, original := range t.Rows {
		row := append([]string{}, original...)
		var issues []domain.Issue

		for _, rule := range e.rules {
			annotation := rule(annotated.Table, row)
			for field, value := range annotation.Rewrites {
				if idx, ok := annotated.Table.Column(field); ok && idx < len(row) {
					row[idx] = value
				}
			}
			issues = append(issues, annotation.Issues...)
		}

		annotated.Table.Rows[i] = row
		annotated.Issues[i] = issues
	}

	return annotated, nil
}

// PhoneRule normalizes the phone field by stripping "+" and spaces. The
// result is kept when it is exactly ten decimal digits; a malformed value is
// rewritten to the "invalid" sentinel and tagged. A null phone is left null
// and not flagged here (the required-field rule tags it instead).
func PhoneRule(t domain.Table, row []string) domain.Annotation {
	raw := t.Cell(row, "phone")
	if raw == "" {
		return domain.Annotation{}
	}

	cleaned := phoneReplacer.Replace(raw)
	if len(cleaned) == 10 && isDigits(cleaned) {
		return domain.Annotation{Rewrites: map[string]string{"phone": cleaned}}
	}

	return domain.Annotation{
		Issues:   []domain.Issue{domain.IssueInvalidPhone},
		Rewrites: map[string]string{"phone": PhoneInvalidValue},
	}
}

// RequiredFieldsRule tags null_<field> for each required field that is
// missing. It runs after the phone rule, so the phone check sees the cleaned
// value: the "invalid" sentinel is non-null and never double-flagged.
func RequiredFieldsRule(t domain.Table, row []string) domain.Annotation {
	var issues []domain.Issue
	for _, field := range requiredFields {
		if t.Cell(row, field) == "" {
			issues = append(issues, domain.NullIssue(field))
		}
	}
	return domain.Annotation{Issues: issues}
}

// DescriptiveFieldsRule sanitizes address and reviews_list, keeping only
// word characters, whitespace, and commas. Null values pass through and no
// issue is ever raised.
func DescriptiveFieldsRule(t domain.Table, row []string) domain.Annotation {
	rewrites := make(map[string]string)
	for _, field := range descriptiveFields {
		idx, ok := t.Column(field)
		if !ok || idx >= len(row) {
			continue
		}
		value := row[idx]
		if domain.IsNull(value) {
			continue
		}
		rewrites[field] = descriptivePattern.ReplaceAllString(value, "")
	}
	if len(rewrites) == 0 {
		return domain.Annotation{}
	}
	return domain.Annotation{Rewrites: rewrites}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
