package domain

import "time"

// ProcessedFileRecord marks one input file as consumed by the pipeline.
// Records are appended once per successfully processed file and never
// mutated or deleted; FileName is unique within a ledger.
type ProcessedFileRecord struct {
	FileName      string    `json:"file_name"`
	ProcessedDate time.Time `json:"processed_date"`
}
