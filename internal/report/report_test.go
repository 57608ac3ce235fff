package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/rpattn/dataqc/internal/pipeline"
)

func TestWriteRunReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_report.xlsx")
	started := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)

	summary := pipeline.Summary{
		RunID:      uuid.New(),
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Files: []pipeline.FileResult{
			{
				FileName:  "data_file_1.csv",
				Status:    pipeline.StatusProcessed,
				TotalRows: 3,
				CleanRows: 1,
				BadRows:   2,
				CleanPath: "out/data_file_1_cleaned_20240601123000.out",
				BadPath:   "out/data_file_1.bad",
			},
			{
				FileName: "data_file_2.csv",
				Status:   pipeline.StatusAlreadyProcessed,
			},
		},
		Processed: 1,
		Skipped:   1,
	}

	if err := Write(path, summary); err != nil {
		t.Fatalf("write returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to reopen report: %v", err)
	}
	defer func() { _ = f.Close() }()

	runID, err := f.GetCellValue("Summary", "B1")
	if err != nil {
		t.Fatalf("failed to read run id cell: %v", err)
	}
	if runID != summary.RunID.String() {
		t.Fatalf("expected run id %s, got %q", summary.RunID, runID)
	}

	rows, err := f.GetRows("Files")
	if err != nil {
		t.Fatalf("failed to read files sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 file rows, got %d", len(rows))
	}
	if rows[1][0] != "data_file_1.csv" || rows[1][1] != string(pipeline.StatusProcessed) {
		t.Fatalf("unexpected first file row: %v", rows[1])
	}
	if rows[2][1] != string(pipeline.StatusAlreadyProcessed) {
		t.Fatalf("unexpected second file row: %v", rows[2])
	}
}
