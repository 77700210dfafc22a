package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceCounts holds how many records each system contributed to the run.
type SourceCounts struct {
	POS     int
	TRM     int
	MPRUPI  int
	MPRCard int
	Bank    int
}

// Total returns the number of records across all sources.
func (c SourceCounts) Total() int {
	return c.POS + c.TRM + c.MPRUPI + c.MPRCard + c.Bank
}

// MatchCounts holds per-stage match counts.
type MatchCounts struct {
	TRMMPRUPI  int
	TRMMPRCard int
	MPRBank    int
	FullChain  int
}

// UnmatchedCounts holds records left without a chain after both stages.
type UnmatchedCounts struct {
	TRMOnly      int
	PartialPairs int
}

// FinancialSummary rolls up the monetary view of a run.
type FinancialSummary struct {
	TotalPOSAmount       decimal.Decimal
	TotalMatchedAmount   decimal.Decimal
	TotalUnmatchedAmount decimal.Decimal
	TotalAmountAtRisk    decimal.Decimal
	MatchRatePercentage  float64
}

// ReconciliationSummary is the top-level output of one reconciliation run.
type ReconciliationSummary struct {
	StartedAt      time.Time
	CompletedAt    time.Time
	BatchID        string
	Range          DateRange
	Sources        SourceCounts
	Matches        MatchCounts
	Unmatched      UnmatchedCounts
	Financial      FinancialSummary
	Findings       FindingTallies
	ProcessingTime time.Duration
}
