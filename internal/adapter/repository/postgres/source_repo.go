package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gorecon/internal/domain"
)

// SourceRepository implements usecase.SourceRepository over the five source
// tables. Every query orders by (date, id) so the matchers see a stable
// sequence: greedy first-fit matching is only reproducible on ordered input.
type SourceRepository struct {
	pool *pgxpool.Pool
}

// NewSourceRepository creates a new SourceRepository.
func NewSourceRepository(pool *pgxpool.Pool) *SourceRepository {
	return &SourceRepository{pool: pool}
}

// Load fetches all five record sets for the date range. Cash POS rows and
// non-credit statement lines never enter a run.
func (r *SourceRepository) Load(ctx context.Context, dr domain.DateRange) (*domain.SourceSets, error) {
	sources := &domain.SourceSets{}
	var err error

	if sources.POS, err = r.loadPOS(ctx, dr); err != nil {
		return nil, fmt.Errorf("load pos: %w", err)
	}
	if sources.TRM, err = r.loadTRM(ctx, dr); err != nil {
		return nil, fmt.Errorf("load trm: %w", err)
	}
	if sources.MPRUPI, err = r.loadMPR(ctx, dr, "mpr_upi_records", domain.InstrumentUPI); err != nil {
		return nil, fmt.Errorf("load mpr upi: %w", err)
	}
	if sources.MPRCard, err = r.loadMPR(ctx, dr, "mpr_card_records", domain.InstrumentCard); err != nil {
		return nil, fmt.Errorf("load mpr card: %w", err)
	}
	if sources.Bank, err = r.loadBank(ctx, dr); err != nil {
		return nil, fmt.Errorf("load bank: %w", err)
	}

	return sources, nil
}

func (r *SourceRepository) loadPOS(ctx context.Context, dr domain.DateRange) ([]domain.POSRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, txn_date, store_name, bill_number, transaction_number, settlement_mode, net_amount
		FROM pos_transactions
		WHERE txn_date BETWEEN $1 AND $2
		  AND settlement_mode <> 'CASH'
		ORDER BY txn_date, id`,
		timeToPgDate(dr.Start), timeToPgDate(dr.End))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.POSRecord
	for rows.Next() {
		var rec domain.POSRecord
		var date pgtype.Date
		var amount pgtype.Numeric
		if err := rows.Scan(&rec.ID, &date, &rec.StoreName, &rec.BillNumber,
			&rec.TransactionNumber, &rec.SettlementMode, &amount); err != nil {
			return nil, err
		}
		rec.Date = date.Time
		rec.NetAmount = numericToDecimal(amount)
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *SourceRepository) loadTRM(ctx context.Context, dr domain.DateRange) ([]domain.GatewayRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT uid, txn_date, store_name, transaction_id, invoice, rrn, approval_code, amount
		FROM trm_transactions
		WHERE txn_date BETWEEN $1 AND $2
		ORDER BY txn_date, uid`,
		timeToPgDate(dr.Start), timeToPgDate(dr.End))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.GatewayRecord
	for rows.Next() {
		var rec domain.GatewayRecord
		var date pgtype.Date
		var amount pgtype.Numeric
		if err := rows.Scan(&rec.UID, &date, &rec.StoreName, &rec.TransactionID,
			&rec.Invoice, &rec.RRN, &rec.ApprovalCode, &amount); err != nil {
			return nil, err
		}
		rec.Date = date.Time
		rec.Amount = numericToDecimal(amount)
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *SourceRepository) loadMPR(ctx context.Context, dr domain.DateRange, table string, instrument domain.Instrument) ([]domain.MerchantPortalRecord, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT uid, txn_date, settlement_date, store_name, transaction_id, rrn, approval_code, utr_number, amount
		FROM %s
		WHERE txn_date BETWEEN $1 AND $2
		ORDER BY txn_date, uid`, table),
		timeToPgDate(dr.Start), timeToPgDate(dr.End))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.MerchantPortalRecord
	for rows.Next() {
		rec := domain.MerchantPortalRecord{Instrument: instrument}
		var date, settlement pgtype.Date
		var amount pgtype.Numeric
		if err := rows.Scan(&rec.UID, &date, &settlement, &rec.StoreName, &rec.TransactionID,
			&rec.RRN, &rec.ApprovalCode, &rec.UTRNumber, &amount); err != nil {
			return nil, err
		}
		rec.Date = date.Time
		rec.SettlementDate = pgDateToTimePtr(settlement)
		rec.Amount = numericToDecimal(amount)
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *SourceRepository) loadBank(ctx context.Context, dr domain.DateRange) ([]domain.BankCreditLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT line_id, value_date, bank_ref, narration, amount
		FROM bank_statement_lines
		WHERE value_date BETWEEN $1 AND $2
		  AND credit_debit = 'CREDIT'
		ORDER BY value_date, line_id`,
		timeToPgDate(dr.Start), timeToPgDate(dr.End))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.BankCreditLine
	for rows.Next() {
		var rec domain.BankCreditLine
		var date pgtype.Date
		var amount pgtype.Numeric
		if err := rows.Scan(&rec.LineID, &date, &rec.BankRef, &rec.Narration, &amount); err != nil {
			return nil, err
		}
		rec.ValueDate = date.Time
		rec.Amount = numericToDecimal(amount)
		records = append(records, rec)
	}

	return records, rows.Err()
}
