package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gorecon/internal/domain"
	"github.com/iho/gorecon/internal/usecase"
)

// MatchRepository implements usecase.MatchRepository.
type MatchRepository struct {
	pool  *pgxpool.Pool
	idGen usecase.IDGenerator
}

// NewMatchRepository creates a new MatchRepository.
func NewMatchRepository(pool *pgxpool.Pool, idGen usecase.IDGenerator) *MatchRepository {
	return &MatchRepository{pool: pool, idGen: idGen}
}

// SavePairMatches persists stage-1 pair matches inside the run transaction.
func (r *MatchRepository) SavePairMatches(ctx context.Context, tx usecase.Transaction, batchID string, pairs []domain.PairMatch) error {
	if len(pairs) == 0 {
		return nil
	}
	pgxTx := tx.(*Tx).PgxTx()

	batch := &pgx.Batch{}
	for i := range pairs {
		p := &pairs[i]
		batch.Queue(`
			INSERT INTO recon_pair_matches
				(id, batch_id, trm_uid, mpr_uid, instrument, match_criteria, amount_variance, confidence)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			r.idGen.Generate(), batchID, p.TRM.UID, p.MPR.UID,
			string(p.MPR.Instrument), string(p.Criteria),
			decimalToNumeric(p.AmountVariance), p.Confidence)
	}

	return r.sendBatch(ctx, pgxTx, batch)
}

// SaveChainMatches persists stage-2 full chains inside the run transaction.
func (r *MatchRepository) SaveChainMatches(ctx context.Context, tx usecase.Transaction, batchID string, chains []domain.FullChainMatch) error {
	if len(chains) == 0 {
		return nil
	}
	pgxTx := tx.(*Tx).PgxTx()

	batch := &pgx.Batch{}
	for i := range chains {
		c := &chains[i]
		batch.Queue(`
			INSERT INTO recon_chain_matches
				(id, batch_id, trm_uid, mpr_uid, bank_line_id, match_type, amount_variance, confidence)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			r.idGen.Generate(), batchID, c.TRM.UID, c.MPR.UID, c.Bank.LineID,
			string(c.Type), decimalToNumeric(c.AmountVariance), c.Confidence)
	}

	return r.sendBatch(ctx, pgxTx, batch)
}

func (r *MatchRepository) sendBatch(ctx context.Context, pgxTx pgx.Tx, batch *pgx.Batch) error {
	results := pgxTx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return results.Close()
}
