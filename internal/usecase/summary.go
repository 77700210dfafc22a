package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gorecon/internal/domain"
)

// AggregateInput carries everything the summary folds together.
type AggregateInput struct {
	StartedAt   time.Time
	CompletedAt time.Time
	BatchID     string
	Range       domain.DateRange
	Sources     *domain.SourceSets
	Stage1      PairMatchResult
	Stage2      ChainMatchResult
	Tallies     domain.FindingTallies
}

// AggregateSummary folds source counts, stage results and finding tallies
// into the run summary. It contains no matching logic of its own beyond
// null-safe division for the match rate.
func AggregateSummary(in AggregateInput) *domain.ReconciliationSummary {
	summary := &domain.ReconciliationSummary{
		BatchID:     in.BatchID,
		Range:       in.Range,
		StartedAt:   in.StartedAt,
		CompletedAt: in.CompletedAt,
		Sources: domain.SourceCounts{
			POS:     len(in.Sources.POS),
			TRM:     len(in.Sources.TRM),
			MPRUPI:  len(in.Sources.MPRUPI),
			MPRCard: len(in.Sources.MPRCard),
			Bank:    len(in.Sources.Bank),
		},
		Matches: domain.MatchCounts{
			TRMMPRUPI:  len(in.Stage1.UPIMatches),
			TRMMPRCard: len(in.Stage1.CardMatches),
			MPRBank:    len(in.Stage2.Chains),
			FullChain:  len(in.Stage2.Chains),
		},
		Unmatched: domain.UnmatchedCounts{
			TRMOnly:      len(in.Stage1.UnmatchedTRM),
			PartialPairs: len(in.Stage2.Partials),
		},
		Findings:       in.Tallies,
		ProcessingTime: in.CompletedAt.Sub(in.StartedAt),
	}

	totalPOS := decimal.Zero
	for i := range in.Sources.POS {
		totalPOS = totalPOS.Add(in.Sources.POS[i].NetAmount)
	}

	matched := decimal.Zero
	for i := range in.Stage2.Chains {
		matched = matched.Add(in.Stage2.Chains[i].TRM.Amount)
	}

	// Unmatched money is what failed to chain: TRM records without a pair
	// plus pairs that never reached a bank credit.
	unmatched := decimal.Zero
	for _, t := range in.Stage1.UnmatchedTRM {
		unmatched = unmatched.Add(t.Amount)
	}
	for i := range in.Stage2.Partials {
		unmatched = unmatched.Add(in.Stage2.Partials[i].TRM.Amount)
	}

	summary.Financial = domain.FinancialSummary{
		TotalPOSAmount:       totalPOS,
		TotalMatchedAmount:   matched,
		TotalUnmatchedAmount: unmatched,
		TotalAmountAtRisk:    in.Tallies.TotalAmountAtRisk,
	}

	if summary.Sources.POS > 0 {
		summary.Financial.MatchRatePercentage = float64(summary.Matches.FullChain) / float64(summary.Sources.POS) * 100
	}

	return summary
}
