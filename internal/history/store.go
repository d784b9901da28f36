// Package history is the import-batch ledger, backed by PostgreSQL.
//
// Every processed upload leaves one row recording totals and the failed
// rows, so operators can answer "what happened to Tuesday's file" without
// digging through logs. The ledger is optional: the service runs without
// it when no database is configured.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"orderbridge/internal/importer"
)

// Batch is one recorded import batch.
type Batch struct {
	ID        uuid.UUID `json:"id"`
	FileName  string    `json:"file_name"`
	TotalRows int       `json:"total_rows"`
	Submitted int       `json:"submitted"`
	Failed    int       `json:"failed"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists import batches.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store over an existing connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS import_batches (
	id         UUID PRIMARY KEY,
	file_name  TEXT NOT NULL,
	total_rows INT NOT NULL,
	submitted  INT NOT NULL,
	failed     INT NOT NULL,
	failures   JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema creates the ledger table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure import_batches schema: %w", err)
	}
	return nil
}

// RecordBatch writes one batch result. Only the failed rows are kept as
// detail; successful acknowledgements are not worth the storage.
func (s *Store) RecordBatch(ctx context.Context, result *importer.BatchResult) error {
	var failedRows []importer.RowResult
	for _, row := range result.Rows {
		if row.Status == importer.RowFailed {
			failedRows = append(failedRows, row)
		}
	}

	failures, err := json.Marshal(failedRows)
	if err != nil {
		return fmt.Errorf("encode failed rows: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO import_batches (id, file_name, total_rows, submitted, failed, failures)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		result.BatchID, result.FileName, result.Total, result.Submitted, result.Failed, failures,
	)
	if err != nil {
		return fmt.Errorf("record import batch: %w", err)
	}
	return nil
}

// RecentBatches lists the newest batches, newest first.
func (s *Store) RecentBatches(ctx context.Context, limit int) ([]Batch, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, file_name, total_rows, submitted, failed, created_at
		 FROM import_batches
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query import batches: %w", err)
	}
	defer rows.Close()

	batches := []Batch{}
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.FileName, &b.TotalRows, &b.Submitted, &b.Failed, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan import batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate import batches: %w", err)
	}
	return batches, nil
}
