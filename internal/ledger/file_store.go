package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rpattn/dataqc/internal/domain"
)

// ledger file columns, in order.
var fileHeader = []string{"file_name", "processed_date"}

// FileStore persists the ledger as a two-column CSV file
// (file_name, processed_date). The whole file is read at construction and
// rewritten in full on every record, so a single process owns it for the
// duration of a run.
type FileStore struct {
	path    string
	records []domain.ProcessedFileRecord
	names   map[string]struct{}
}

// NewFileStore loads the ledger at path. A missing file is an empty ledger,
// not an error.
func NewFileStore(path string) (*FileStore, error) {
	store := &FileStore{
		path:  path,
		names: make(map[string]struct{}),
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("failed to open ledger %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger %s: %w", path, err)
	}

	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			// Header row, or a line too short to carry a record.
			continue
		}
		processedAt, err := time.Parse(time.RFC3339, row[1])
		if err != nil {
			return nil, fmt.Errorf("failed to parse ledger timestamp %q: %w", row[1], err)
		}
		store.records = append(store.records, domain.ProcessedFileRecord{
			FileName:      row[0],
			ProcessedDate: processedAt,
		})
		store.names[row[0]] = struct{}{}
	}

	return store, nil
}

// HasProcessed reports whether fileName has a ledger record.
func (s *FileStore) HasProcessed(_ context.Context, fileName string) (bool, error) {
	_, ok := s.names[fileName]
	return ok, nil
}

// RecordProcessed appends a record and rewrites the ledger file in full.
// The in-memory state is only updated once the rewrite succeeds.
func (s *FileStore) RecordProcessed(_ context.Context, fileName string, at time.Time) error {
	if _, ok := s.names[fileName]; ok {
		return fmt.Errorf("file %q is already recorded in the ledger", fileName)
	}

	record := domain.ProcessedFileRecord{FileName: fileName, ProcessedDate: at}
	updated := append(append([]domain.ProcessedFileRecord{}, s.records...), record)

	if err := s.rewrite(updated); err != nil {
		return err
	}

	s.records = updated
	s.names[fileName] = struct{}{}
	return nil
}

// Records returns the ledger contents in insertion order.
func (s *FileStore) Records() []domain.ProcessedFileRecord {
	out := make([]domain.ProcessedFileRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *FileStore) rewrite(records []domain.ProcessedFileRecord) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to rewrite ledger %s: %w", s.path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(fileHeader); err != nil {
		return fmt.Errorf("failed to write ledger header: %w", err)
	}
	for _, record := range records {
		row := []string{record.FileName, record.ProcessedDate.Format(time.RFC3339)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write ledger record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush ledger %s: %w", s.path, err)
	}
	return nil
}
