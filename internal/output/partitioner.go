// Package output writes the clean and bad artifacts for one annotated table.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rpattn/dataqc/internal/domain"
	"github.com/rpattn/dataqc/internal/tabular"
)

// artifactTimestampLayout is the second-resolution stamp embedded in clean
// artifact names so repeated runs never collide.
const artifactTimestampLayout = "20060102150405"

// Partitioner splits an annotated table into clean and bad artifacts under
// one output directory.
type Partitioner struct {
	outputDir string
	now       func() time.Time
}

// Option customizes a Partitioner.
type Option func(*Partitioner)

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Partitioner) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPartitioner creates a partitioner writing into outputDir.
func NewPartitioner(outputDir string, opts ...Option) *Partitioner {
	p := &Partitioner{
		outputDir: outputDir,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result describes the artifacts one Write produced.
type Result struct {
	CleanPath string
	BadPath   string // empty when no bad rows existed
	CleanRows int
	BadRows   int
}

// Write partitions the table by per-row issues. The clean artifact
// (<base>_cleaned_<timestamp>.out, original columns only) is always written,
// even when empty. The bad artifact (<base>.bad, original columns plus
// is_bad and issue_type) is written only when at least one bad row exists;
// its path carries no timestamp, so a rerun over the same base name
// overwrites it.
func (p *Partitioner) Write(table domain.AnnotatedTable, baseName string) (Result, error) {
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create output directory %s: %w", p.outputDir, err)
	}

	var cleanRows [][]string
	var badRows [][]string
	for i, row := range table.Rows {
		if table.IsBad(i) {
			badRow := append(append([]string{}, row...), "true", domain.FormatIssues(table.Issues[i]))
			badRows = append(badRows, badRow)
		} else {
			cleanRows = append(cleanRows, row)
		}
	}

	stamp := p.now().Format(artifactTimestampLayout)
	result := Result{
		CleanPath: filepath.Join(p.outputDir, fmt.Sprintf("%s_cleaned_%s.out", baseName, stamp)),
		CleanRows: len(cleanRows),
		BadRows:   len(badRows),
	}

	if err := tabular.Write(result.CleanPath, table.Headers, cleanRows); err != nil {
		return Result{}, fmt.Errorf("failed to write clean artifact: %w", err)
	}

	if len(badRows) > 0 {
		badHeaders := append(append([]string{}, table.Headers...), "is_bad", "issue_type")
		result.BadPath = filepath.Join(p.outputDir, baseName+".bad")
		if err := tabular.Write(result.BadPath, badHeaders, badRows); err != nil {
			return Result{}, fmt.Errorf("failed to write bad artifact: %w", err)
		}
	}

	return result, nil
}
