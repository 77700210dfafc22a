package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gorecon/internal/domain"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// RunSummaryResponse represents one reconciliation run in API responses.
type RunSummaryResponse struct {
	BatchID          string            `json:"batch_id"`
	StartDate        string            `json:"start_date"`
	EndDate          string            `json:"end_date"`
	StartedAt        time.Time         `json:"started_at"`
	CompletedAt      time.Time         `json:"completed_at"`
	ProcessingTimeMS int64             `json:"processing_time_ms"`
	Sources          SourceCounts      `json:"sources"`
	Matches          MatchCounts       `json:"matches"`
	Unmatched        UnmatchedCounts   `json:"unmatched"`
	Financial        FinancialSummary  `json:"financial"`
	Findings         FindingTallies    `json:"findings"`
}

// SourceCounts mirrors per-source record counts.
type SourceCounts struct {
	POS     int `json:"pos"`
	TRM     int `json:"trm"`
	MPRUPI  int `json:"mpr_upi"`
	MPRCard int `json:"mpr_card"`
	Bank    int `json:"bank"`
	Total   int `json:"total"`
}

// MatchCounts mirrors per-stage match counts.
type MatchCounts struct {
	TRMMPRUPI  int `json:"trm_mpr_upi"`
	TRMMPRCard int `json:"trm_mpr_card"`
	MPRBank    int `json:"mpr_bank"`
	FullChain  int `json:"full_chain"`
}

// UnmatchedCounts mirrors residual counts after both stages.
type UnmatchedCounts struct {
	TRMOnly      int `json:"trm_only"`
	PartialPairs int `json:"partial_pairs"`
}

// FinancialSummary mirrors the money totals of a run.
type FinancialSummary struct {
	TotalPOSAmount       decimal.Decimal `json:"total_pos_amount"`
	TotalMatchedAmount   decimal.Decimal `json:"total_matched_amount"`
	TotalUnmatchedAmount decimal.Decimal `json:"total_unmatched_amount"`
	TotalAmountAtRisk    decimal.Decimal `json:"total_amount_at_risk"`
	MatchRatePercentage  float64         `json:"match_rate_percentage"`
}

// FindingTallies mirrors the finding counters of a run.
type FindingTallies struct {
	Total      int            `json:"total"`
	ByKind     map[string]int `json:"by_kind"`
	BySeverity map[string]int `json:"by_severity"`
}

// RunSummaryFromDomain converts a domain summary to a response.
func RunSummaryFromDomain(s *domain.ReconciliationSummary) *RunSummaryResponse {
	byKind := make(map[string]int, len(s.Findings.ByKind))
	for kind, n := range s.Findings.ByKind {
		byKind[string(kind)] = n
	}
	bySeverity := make(map[string]int, len(s.Findings.BySeverity))
	for severity, n := range s.Findings.BySeverity {
		bySeverity[string(severity)] = n
	}

	return &RunSummaryResponse{
		BatchID:          s.BatchID,
		StartDate:        s.Range.Start.Format(dateLayout),
		EndDate:          s.Range.End.Format(dateLayout),
		StartedAt:        s.StartedAt,
		CompletedAt:      s.CompletedAt,
		ProcessingTimeMS: s.ProcessingTime.Milliseconds(),
		Sources: SourceCounts{
			POS:     s.Sources.POS,
			TRM:     s.Sources.TRM,
			MPRUPI:  s.Sources.MPRUPI,
			MPRCard: s.Sources.MPRCard,
			Bank:    s.Sources.Bank,
			Total:   s.Sources.Total(),
		},
		Matches: MatchCounts{
			TRMMPRUPI:  s.Matches.TRMMPRUPI,
			TRMMPRCard: s.Matches.TRMMPRCard,
			MPRBank:    s.Matches.MPRBank,
			FullChain:  s.Matches.FullChain,
		},
		Unmatched: UnmatchedCounts{
			TRMOnly:      s.Unmatched.TRMOnly,
			PartialPairs: s.Unmatched.PartialPairs,
		},
		Financial: FinancialSummary{
			TotalPOSAmount:       s.Financial.TotalPOSAmount,
			TotalMatchedAmount:   s.Financial.TotalMatchedAmount,
			TotalUnmatchedAmount: s.Financial.TotalUnmatchedAmount,
			TotalAmountAtRisk:    s.Financial.TotalAmountAtRisk,
			MatchRatePercentage:  s.Financial.MatchRatePercentage,
		},
		Findings: FindingTallies{
			Total:      s.Findings.Total,
			ByKind:     byKind,
			BySeverity: bySeverity,
		},
	}
}

// RunSummariesFromDomain converts domain summaries to responses.
func RunSummariesFromDomain(summaries []*domain.ReconciliationSummary) []*RunSummaryResponse {
	result := make([]*RunSummaryResponse, len(summaries))
	for i, s := range summaries {
		result[i] = RunSummaryFromDomain(s)
	}
	return result
}

// FindingResponse represents one finding in API responses.
type FindingResponse struct {
	ExceptionType     string          `json:"exception_type"`
	Severity          string          `json:"severity"`
	TransactionDate   *string         `json:"transaction_date,omitempty"`
	StoreName         string          `json:"store_name,omitempty"`
	SourceSystem      string          `json:"source_system"`
	SourceRecordID    string          `json:"source_record_id"`
	TransactionRef    string          `json:"transaction_ref,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description"`
	RecommendedAction string          `json:"recommended_action"`
}

// FindingFromDomain converts a domain finding to a response.
func FindingFromDomain(f domain.Finding) *FindingResponse {
	resp := &FindingResponse{
		ExceptionType:     string(f.Kind),
		Severity:          string(f.Severity),
		StoreName:         f.StoreName,
		SourceSystem:      f.SourceSystem,
		SourceRecordID:    f.SourceRecordID,
		TransactionRef:    f.TransactionRef,
		Amount:            f.Amount,
		Description:       f.Description,
		RecommendedAction: f.RecommendedAction,
	}
	if f.TransactionDate != nil {
		d := f.TransactionDate.Format(dateLayout)
		resp.TransactionDate = &d
	}
	return resp
}

// FindingsFromDomain converts domain findings to responses.
func FindingsFromDomain(findings []domain.Finding) []*FindingResponse {
	result := make([]*FindingResponse, len(findings))
	for i, f := range findings {
		result[i] = FindingFromDomain(f)
	}
	return result
}
