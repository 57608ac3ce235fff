package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/rpattn/dataqc/internal/domain"
)

// MemoryStore is a non-durable Store for tests.
type MemoryStore struct {
	records []domain.ProcessedFileRecord
	names   map[string]struct{}

	// RecordErr, when set, is returned by RecordProcessed to simulate an
	// unwritable ledger.
	RecordErr error
}

// NewMemoryStore returns an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{names: make(map[string]struct{})}
}

func (s *MemoryStore) HasProcessed(_ context.Context, fileName string) (bool, error) {
	_, ok := s.names[fileName]
	return ok, nil
}

func (s *MemoryStore) RecordProcessed(_ context.Context, fileName string, at time.Time) error {
	if s.RecordErr != nil {
		return s.RecordErr
	}
	if _, ok := s.names[fileName]; ok {
		return fmt.Errorf("file %q is already recorded in the ledger", fileName)
	}
	s.records = append(s.records, domain.ProcessedFileRecord{FileName: fileName, ProcessedDate: at})
	s.names[fileName] = struct{}{}
	return nil
}

// Records returns the recorded entries in insertion order.
func (s *MemoryStore) Records() []domain.ProcessedFileRecord {
	out := make([]domain.ProcessedFileRecord, len(s.records))
	copy(out, s.records)
	return out
}
