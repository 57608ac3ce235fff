package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the ledger in a processed_files table, for deployments
// where several hosts share one ledger. Uniqueness is enforced by the table's
// primary key rather than an in-memory set.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wires a ledger backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) HasProcessed(ctx context.Context, fileName string) (bool, error) {
	if s.pool == nil {
		return false, fmt.Errorf("postgres ledger not initialized")
	}

	var exists bool
	err := s.pool.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM processed_files WHERE file_name = $1)`,
		fileName,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check processed file: %w", err)
	}

	return exists, nil
}

func (s *PostgresStore) RecordProcessed(ctx context.Context, fileName string, at time.Time) error {
	if s.pool == nil {
		return fmt.Errorf("postgres ledger not initialized")
	}

	_, err := s.pool.Exec(
		ctx,
		`INSERT INTO processed_files (file_name, processed_date) VALUES ($1, $2)`,
		fileName,
		at,
	)
	if err != nil {
		return fmt.Errorf("failed to record processed file: %w", err)
	}

	return nil
}
