// Package report renders a pipeline run summary as an xlsx workbook, for
// operators who review batch outcomes in a spreadsheet.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rpattn/dataqc/internal/pipeline"
)

const (
	summarySheet = "Summary"
	filesSheet   = "Files"
)

// Write saves the run summary workbook to path. The Summary sheet carries
// run-level counters; the Files sheet has one row per candidate file.
func Write(path string, summary pipeline.Summary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(filesSheet); err != nil {
		return fmt.Errorf("failed to create files sheet: %w", err)
	}

	summaryRows := [][]any{
		{"run_id", summary.RunID.String()},
		{"started_at", summary.StartedAt.Format(time.RFC3339)},
		{"finished_at", summary.FinishedAt.Format(time.RFC3339)},
		{"files", len(summary.Files)},
		{"processed", summary.Processed},
		{"skipped", summary.Skipped},
		{"failed", summary.Failed},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to build summary cell name: %w", err)
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	header := []any{"file_name", "status", "detail", "total_rows", "clean_rows", "bad_rows", "clean_path", "bad_path"}
	if err := f.SetSheetRow(filesSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write files header: %w", err)
	}
	for i, file := range summary.Files {
		row := []any{
			file.FileName,
			string(file.Status),
			file.Detail,
			file.TotalRows,
			file.CleanRows,
			file.BadRows,
			file.CleanPath,
			file.BadPath,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to build files cell name: %w", err)
		}
		if err := f.SetSheetRow(filesSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write file row: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save run report %s: %w", path, err)
	}
	return nil
}
