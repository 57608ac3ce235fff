// Package pipeline sequences the data-quality stages per discovered file:
// admission, load, annotate, write, record. Files are processed one at a
// time; a failure in one file never blocks the rest of the batch, and a file
// is only recorded in the ledger after its artifacts are durably written.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rpattn/dataqc/internal/admission"
	"github.com/rpattn/dataqc/internal/ledger"
	"github.com/rpattn/dataqc/internal/output"
	"github.com/rpattn/dataqc/internal/quality"
	"github.com/rpattn/dataqc/internal/tabular"
)

// DefaultPattern matches the candidate input files under an input directory.
const DefaultPattern = "data_file_*.csv"

// FileStatus is the terminal state of one candidate file within a run.
type FileStatus string

const (
	StatusProcessed        FileStatus = "processed"
	StatusAlreadyProcessed FileStatus = "skipped_already_processed"
	StatusEmptyFile        FileStatus = "skipped_empty"
	StatusInvalidExtension FileStatus = "skipped_invalid_extension"
	StatusReadFailed       FileStatus = "read_failed"
	StatusSchemaInvalid    FileStatus = "schema_invalid"
	StatusWriteFailed      FileStatus = "write_failed"
	StatusLedgerFailed     FileStatus = "ledger_failed"
)

// FileResult records the outcome of one candidate file.
type FileResult struct {
	FileName  string     `json:"file_name"`
	Status    FileStatus `json:"status"`
	Detail    string     `json:"detail,omitempty"`
	TotalRows int        `json:"total_rows"`
	CleanRows int        `json:"clean_rows"`
	BadRows   int        `json:"bad_rows"`
	CleanPath string     `json:"clean_path,omitempty"`
	BadPath   string     `json:"bad_path,omitempty"`
}

// Summary aggregates a whole run.
type Summary struct {
	RunID      uuid.UUID    `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Files      []FileResult `json:"files"`
	Processed  int          `json:"processed"`
	Skipped    int          `json:"skipped"`
	Failed     int          `json:"failed"`
}

// Runner owns the collaborators of one pipeline run.
type Runner struct {
	gate        *admission.Gate
	engine      *quality.Engine
	partitioner *output.Partitioner
	ledger      ledger.Store
	logger      *slog.Logger
	now         func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner wires a runner around a ledger and an output partitioner.
func NewRunner(store ledger.Store, partitioner *output.Partitioner, opts ...Option) *Runner {
	r := &Runner{
		gate:        admission.NewGate(store),
		engine:      quality.NewEngine(),
		partitioner: partitioner,
		ledger:      store,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Discover lists candidate files under inputDir matching pattern. Order is
// whatever the filesystem yields; the pipeline does not rely on it.
func Discover(inputDir, pattern string) ([]string, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultPattern
	}
	files, err := filepath.Glob(filepath.Join(inputDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", inputDir, err)
	}
	return files, nil
}

// Run processes every candidate file and returns the run summary. Per-file
// failures are logged and skipped; only an unwritable ledger (or a cancelled
// context) aborts the run, since continuing would risk reprocessing files.
func (r *Runner) Run(ctx context.Context, files []string) (Summary, error) {
	summary := Summary{
		RunID:     uuid.New(),
		StartedAt: r.now(),
	}
	logger := r.logger.With("run_id", summary.RunID)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = r.now()
			return summary, fmt.Errorf("run cancelled: %w", err)
		}

		result, err := r.processFile(ctx, logger, path)
		summary.Files = append(summary.Files, result)
		switch result.Status {
		case StatusProcessed:
			summary.Processed++
		case StatusAlreadyProcessed, StatusEmptyFile, StatusInvalidExtension:
			summary.Skipped++
		default:
			summary.Failed++
		}
		if err != nil {
			summary.FinishedAt = r.now()
			return summary, err
		}
	}

	summary.FinishedAt = r.now()
	logger.Info("data quality pipeline execution complete",
		"files", len(summary.Files),
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

// processFile drives one file through the per-file state machine. The
// returned error is non-nil only for run-fatal conditions.
func (r *Runner) processFile(ctx context.Context, logger *slog.Logger, path string) (FileResult, error) {
	fileName := filepath.Base(path)
	result := FileResult{FileName: fileName}

	decision, err := r.gate.Admit(ctx, path)
	if err != nil {
		logger.Warn("admission check failed", "file", fileName, "error", err)
		result.Status = StatusReadFailed
		result.Detail = err.Error()
		return result, nil
	}
	switch decision {
	case admission.SkipAlreadyProcessed:
		logger.Warn("skipping file: already processed", "file", fileName)
		result.Status = StatusAlreadyProcessed
		return result, nil
	case admission.SkipEmpty:
		logger.Warn("skipping file: file is empty", "file", fileName)
		result.Status = StatusEmptyFile
		return result, nil
	case admission.SkipInvalidExtension:
		logger.Warn("skipping file: invalid file extension", "file", fileName)
		result.Status = StatusInvalidExtension
		return result, nil
	}

	logger.Info("processing file", "file", fileName)

	table, err := tabular.Load(path)
	if err != nil {
		logger.Warn("error reading file, skipping", "file", fileName, "error", err)
		result.Status = StatusReadFailed
		result.Detail = err.Error()
		return result, nil
	}
	result.TotalRows = len(table.Rows)

	annotated, err := r.engine.Annotate(table)
	if err != nil {
		var schemaErr *quality.SchemaError
		if errors.As(err, &schemaErr) {
			logger.Warn("schema check failed, skipping", "file", fileName, "column", schemaErr.Column)
		} else {
			logger.Warn("annotation failed, skipping", "file", fileName, "error", err)
		}
		result.Status = StatusSchemaInvalid
		result.Detail = err.Error()
		return result, nil
	}

	baseName := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	written, err := r.partitioner.Write(annotated, baseName)
	if err != nil {
		// Not recorded in the ledger, so a later run retries this file.
		logger.Error("failed to write output artifacts, skipping", "file", fileName, "error", err)
		result.Status = StatusWriteFailed
		result.Detail = err.Error()
		return result, nil
	}
	result.CleanRows = written.CleanRows
	result.BadRows = written.BadRows
	result.CleanPath = written.CleanPath
	result.BadPath = written.BadPath

	logger.Info("clean records written", "file", fileName, "path", written.CleanPath, "rows", written.CleanRows)
	if written.BadPath != "" {
		logger.Warn("bad records written", "file", fileName, "path", written.BadPath, "rows", written.BadRows)
	}

	// Record last: marking the file done before its outputs exist would
	// lose rows on a crash between the two steps.
	if err := r.ledger.RecordProcessed(ctx, fileName, r.now()); err != nil {
		result.Status = StatusLedgerFailed
		result.Detail = err.Error()
		return result, fmt.Errorf("failed to update ledger: %w", err)
	}

	result.Status = StatusProcessed
	return result, nil
}
