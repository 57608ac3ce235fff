package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/rpattn/dataqc/internal/ledger"
	"github.com/rpattn/dataqc/internal/output"
)

const inputHeader = "name,phone,location,address,reviews_list\n"

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return rows
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to list %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func newTestRunner(store ledger.Store, outDir string) *Runner {
	clock := func() time.Time {
		return time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC)
	}
	return NewRunner(store,
		output.NewPartitioner(outDir, output.WithClock(clock)),
		WithClock(clock),
	)
}

func TestRunEndToEnd(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	// Row 1 is fully valid, row 2 has a null name, row 3 an 11-digit phone.
	path := writeInput(t, inDir, "data_file_1.csv", inputHeader+
		"Acme Diner,555 123 4567,Midtown,12 Main St,good\n"+
		",5551234567,Uptown,,\n"+
		"Gamma Grill,12345678901,Downtown,,\n")

	store := ledger.NewMemoryStore()
	runner := newTestRunner(store, outDir)

	summary, err := runner.Run(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if summary.Processed != 1 || summary.Skipped != 0 || summary.Failed != 0 {
		t.Fatalf("unexpected summary counters: %+v", summary)
	}

	result := summary.Files[0]
	if result.Status != StatusProcessed {
		t.Fatalf("expected processed, got %s (%s)", result.Status, result.Detail)
	}
	if result.TotalRows != 3 || result.CleanRows != 1 || result.BadRows != 2 {
		t.Fatalf("unexpected row counts: %+v", result)
	}

	clean := readCSV(t, result.CleanPath)
	wantClean := [][]string{
		{"name", "phone", "location", "address", "reviews_list"},
		{"Acme Diner", "5551234567", "Midtown", "12 Main St", "good"},
	}
	if !reflect.DeepEqual(clean, wantClean) {
		t.Fatalf("unexpected clean artifact: %v", clean)
	}

	bad := readCSV(t, result.BadPath)
	if len(bad) != 3 {
		t.Fatalf("expected header plus 2 bad rows, got %v", bad)
	}
	issueCol := len(bad[0]) - 1
	if bad[1][issueCol] != "null_name;" {
		t.Fatalf("expected null_name; for row 2, got %q", bad[1][issueCol])
	}
	if bad[2][issueCol] != "invalid_phone;" {
		t.Fatalf("expected invalid_phone; for row 3, got %q", bad[2][issueCol])
	}

	records := store.Records()
	if len(records) != 1 || records[0].FileName != "data_file_1.csv" {
		t.Fatalf("expected exactly one ledger entry for the input, got %+v", records)
	}
}

func TestRunIsIdempotentAcrossRuns(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	writeInput(t, inDir, "data_file_1.csv", inputHeader+"Acme Diner,5551234567,Midtown,,\n")
	writeInput(t, inDir, "data_file_2.csv", inputHeader+"Beta Cafe,5559876543,Uptown,,\n")
	ledgerPath := filepath.Join(t.TempDir(), "processed_files.csv")

	run := func() Summary {
		store, err := ledger.NewFileStore(ledgerPath)
		if err != nil {
			t.Fatalf("failed to open ledger: %v", err)
		}
		files, err := Discover(inDir, DefaultPattern)
		if err != nil {
			t.Fatalf("discover returned error: %v", err)
		}
		summary, err := newTestRunner(store, outDir).Run(context.Background(), files)
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
		return summary
	}

	first := run()
	if first.Processed != 2 {
		t.Fatalf("expected 2 processed files on first run, got %+v", first)
	}
	artifacts := listDir(t, outDir)
	ledgerBefore := readCSV(t, ledgerPath)

	second := run()
	if second.Processed != 0 || second.Skipped != 2 {
		t.Fatalf("expected all files skipped on second run, got %+v", second)
	}
	for _, file := range second.Files {
		if file.Status != StatusAlreadyProcessed {
			t.Fatalf("expected skipped_already_processed, got %s", file.Status)
		}
	}
	if got := listDir(t, outDir); !reflect.DeepEqual(got, artifacts) {
		t.Fatalf("second run created artifacts: %v vs %v", got, artifacts)
	}
	if got := readCSV(t, ledgerPath); !reflect.DeepEqual(got, ledgerBefore) {
		t.Fatalf("second run changed the ledger: %v vs %v", got, ledgerBefore)
	}
}

func TestRunContinuesPastUnreadableFile(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	broken := writeInput(t, inDir, "data_file_1.csv", inputHeader+"\"unterminated,555,Midtown,,\n")
	good := writeInput(t, inDir, "data_file_2.csv", inputHeader+"Acme Diner,5551234567,Midtown,,\n")

	store := ledger.NewMemoryStore()
	summary, err := newTestRunner(store, outDir).Run(context.Background(), []string{broken, good})
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if summary.Files[0].Status != StatusReadFailed {
		t.Fatalf("expected read_failed for broken file, got %s", summary.Files[0].Status)
	}
	if summary.Files[1].Status != StatusProcessed {
		t.Fatalf("expected second file to process, got %s", summary.Files[1].Status)
	}

	// The unreadable file stays out of the ledger so a later run retries it.
	processed, _ := store.HasProcessed(context.Background(), "data_file_1.csv")
	if processed {
		t.Fatal("unreadable file must not be recorded as processed")
	}
}

func TestRunSchemaErrorSkipsFileWithoutRecording(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	path := writeInput(t, inDir, "data_file_1.csv", "name,phone\nAcme,5551234567\n")

	store := ledger.NewMemoryStore()
	summary, err := newTestRunner(store, outDir).Run(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if summary.Files[0].Status != StatusSchemaInvalid {
		t.Fatalf("expected schema_invalid, got %s", summary.Files[0].Status)
	}
	if len(store.Records()) != 0 {
		t.Fatalf("schema-invalid file must not be recorded: %+v", store.Records())
	}
	if got := listDir(t, outDir); len(got) != 0 {
		t.Fatalf("schema-invalid file must not produce artifacts: %v", got)
	}
}

func TestRunLedgerWriteFailureIsFatal(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	first := writeInput(t, inDir, "data_file_1.csv", inputHeader+"Acme Diner,5551234567,Midtown,,\n")
	second := writeInput(t, inDir, "data_file_2.csv", inputHeader+"Beta Cafe,5559876543,Uptown,,\n")

	store := ledger.NewMemoryStore()
	store.RecordErr = errors.New("disk full")

	summary, err := newTestRunner(store, outDir).Run(context.Background(), []string{first, second})
	if err == nil {
		t.Fatal("expected run to abort on ledger write failure")
	}
	// The run stops at the first file; the second is never attempted.
	if len(summary.Files) != 1 {
		t.Fatalf("expected run to stop after the first file, got %d results", len(summary.Files))
	}
	// Distinct from an artifact write failure, which is per-file and retryable.
	if summary.Files[0].Status != StatusLedgerFailed {
		t.Fatalf("expected ledger_failed, got %s", summary.Files[0].Status)
	}
}

func TestDiscoverMatchesPattern(t *testing.T) {
	inDir := t.TempDir()
	writeInput(t, inDir, "data_file_1.csv", "x\n")
	writeInput(t, inDir, "data_file_2.csv", "x\n")
	writeInput(t, inDir, "notes.csv", "x\n")

	files, err := Discover(inDir, DefaultPattern)
	if err != nil {
		t.Fatalf("discover returned error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 candidates, got %v", files)
	}
}
