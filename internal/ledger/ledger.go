// Package ledger tracks which input files the pipeline has already consumed.
// The ledger is the only state shared across runs; recording a file is always
// the last step of processing it, so a crash before the record leaves the
// file eligible for retry.
package ledger

import (
	"context"
	"time"
)

// Store defines the interface for processed-file ledger operations
type Store interface {
	// HasProcessed reports whether a record with the given file name exists.
	HasProcessed(ctx context.Context, fileName string) (bool, error)
	// RecordProcessed appends a record for the given file name. File names
	// are unique; recording the same name twice is an error.
	RecordProcessed(ctx context.Context, fileName string, at time.Time) error
}
