package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gorecon/internal/domain"
	"github.com/iho/gorecon/internal/usecase"
)

// RunRepository implements usecase.RunRepository. The summary is stored as a
// JSON document next to the queryable key columns: reads reconstruct exactly
// what the run computed, with no re-aggregation on the way out.
type RunRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// Save persists the run summary inside the run transaction.
func (r *RunRepository) Save(ctx context.Context, tx usecase.Transaction, summary *domain.ReconciliationSummary) error {
	pgxTx := tx.(*Tx).PgxTx()

	doc, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	_, err = pgxTx.Exec(ctx, `
		INSERT INTO recon_runs
			(batch_id, range_start, range_end, started_at, completed_at, summary)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		summary.BatchID,
		timeToPgDate(summary.Range.Start), timeToPgDate(summary.Range.End),
		timeToPgTimestamptz(summary.StartedAt), timeToPgTimestamptz(summary.CompletedAt),
		doc)

	return err
}

// GetByBatchID returns one persisted run summary.
func (r *RunRepository) GetByBatchID(ctx context.Context, batchID string) (*domain.ReconciliationSummary, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx,
		`SELECT summary FROM recon_runs WHERE batch_id = $1`, batchID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, err
	}

	var summary domain.ReconciliationSummary
	if err := json.Unmarshal(doc, &summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}

	return &summary, nil
}

// List returns persisted run summaries, newest first.
func (r *RunRepository) List(ctx context.Context, limit, offset int) ([]*domain.ReconciliationSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT summary FROM recon_runs
		ORDER BY started_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*domain.ReconciliationSummary
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var summary domain.ReconciliationSummary
		if err := json.Unmarshal(doc, &summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
		summaries = append(summaries, &summary)
	}

	return summaries, rows.Err()
}
