// Package tabular reads and writes the comma-separated tables the pipeline
// works on. Reading tolerates a UTF-8 byte order mark and ragged rows; rows
// shorter than the header are padded so every row aligns to the header width.
package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"github.com/rpattn/dataqc/internal/domain"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Load reads a CSV file into a Table. The first record is the header row.
func Load(path string) (domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to read csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return domain.Table{}, errors.New("no header row found")
	}

	headers := records[0]
	rows := records[1:]
	for i := range rows {
		rows[i] = padRow(rows[i], len(headers))
	}

	return domain.Table{Headers: headers, Rows: rows}, nil
}

// Write writes a header row followed by data rows to path, truncating any
// existing file.
func Write(path string, headers []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row to %s: %w", path, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row[:length]
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}
