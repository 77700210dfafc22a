package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gorecon/internal/domain"
	"github.com/iho/gorecon/internal/usecase"
)

// findingStatusOpen is the initial workflow status of every persisted finding.
const findingStatusOpen = "OPEN"

// FindingRepository implements usecase.FindingRepository.
type FindingRepository struct {
	pool  *pgxpool.Pool
	idGen usecase.IDGenerator
}

// NewFindingRepository creates a new FindingRepository.
func NewFindingRepository(pool *pgxpool.Pool, idGen usecase.IDGenerator) *FindingRepository {
	return &FindingRepository{pool: pool, idGen: idGen}
}

// SaveAll persists the findings of one run inside the run transaction.
func (r *FindingRepository) SaveAll(ctx context.Context, tx usecase.Transaction, batchID string, findings []domain.Finding) error {
	if len(findings) == 0 {
		return nil
	}
	pgxTx := tx.(*Tx).PgxTx()

	batch := &pgx.Batch{}
	for i := range findings {
		f := &findings[i]

		var txnDate pgtype.Date
		if f.TransactionDate != nil {
			txnDate = timeToPgDate(*f.TransactionDate)
		}

		batch.Queue(`
			INSERT INTO recon_findings
				(id, batch_id, exception_type, severity, txn_date, store_name,
				 source_system, source_record_id, transaction_ref, amount,
				 description, recommended_action, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			r.idGen.Generate(), batchID, string(f.Kind), string(f.Severity),
			txnDate, f.StoreName, f.SourceSystem, f.SourceRecordID,
			f.TransactionRef, decimalToNumeric(f.Amount),
			f.Description, f.RecommendedAction, findingStatusOpen)
	}

	results := pgxTx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return results.Close()
}

// ListByBatch returns the findings of one run in insertion order.
func (r *FindingRepository) ListByBatch(ctx context.Context, batchID string, limit, offset int) ([]domain.Finding, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT exception_type, severity, txn_date, store_name, source_system,
		       source_record_id, transaction_ref, amount, description, recommended_action
		FROM recon_findings
		WHERE batch_id = $1
		ORDER BY id
		LIMIT $2 OFFSET $3`,
		batchID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var findings []domain.Finding
	for rows.Next() {
		var f domain.Finding
		var kind, severity string
		var txnDate pgtype.Date
		var amount pgtype.Numeric
		if err := rows.Scan(&kind, &severity, &txnDate, &f.StoreName, &f.SourceSystem,
			&f.SourceRecordID, &f.TransactionRef, &amount, &f.Description, &f.RecommendedAction); err != nil {
			return nil, err
		}
		f.Kind = domain.FindingKind(kind)
		f.Severity = domain.Severity(severity)
		f.TransactionDate = pgDateToTimePtr(txnDate)
		f.Amount = numericToDecimal(amount)
		findings = append(findings, f)
	}

	return findings, rows.Err()
}
