package usecase

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gorecon/internal/domain"
)

// PairMatcher performs stage-1 matching of gateway (TRM) records against
// merchant portal (MPR) records. Matching is greedy first-fit in priority
// order: UPI by RRN first, then card by RRN plus approval code. A record on
// either side is claimed by at most one pair; exclusion state lives inside
// each Match call, so a matcher instance is safe to reuse across runs.
type PairMatcher struct {
	logger    zerolog.Logger
	tolerance decimal.Decimal
}

// NewPairMatcher creates a stage-1 matcher with the given amount tolerance.
// Accepted pairs satisfy |trm.amount - mpr.amount| < tolerance, strictly.
func NewPairMatcher(tolerance decimal.Decimal, logger zerolog.Logger) *PairMatcher {
	return &PairMatcher{
		tolerance: tolerance,
		logger:    logger,
	}
}

// PairMatchResult is the outcome of one stage-1 pass.
type PairMatchResult struct {
	UPIMatches   []domain.PairMatch
	CardMatches  []domain.PairMatch
	UnmatchedTRM []*domain.GatewayRecord
}

// Pairs returns UPI and card matches as one slice, UPI first.
func (r PairMatchResult) Pairs() []domain.PairMatch {
	pairs := make([]domain.PairMatch, 0, len(r.UPIMatches)+len(r.CardMatches))
	pairs = append(pairs, r.UPIMatches...)
	pairs = append(pairs, r.CardMatches...)
	return pairs
}

// Match pairs TRM records to MPR records. Inputs must be ordered
// deterministically by the loader; the first candidate within tolerance wins
// and is removed from the pool, no globally optimal assignment is attempted.
// Records without identifiers or without a positive amount are skipped and
// fall through as unmatched.
func (m *PairMatcher) Match(trm []domain.GatewayRecord, mprUPI, mprCard []domain.MerchantPortalRecord) PairMatchResult {
	result := PairMatchResult{}

	matchedTRM := make(map[string]bool, len(trm))
	matchedUPI := make(map[string]bool, len(mprUPI))
	matchedCard := make(map[string]bool, len(mprCard))

	// Rule 1: UPI by RRN.
	for i := range trm {
		t := &trm[i]
		if t.UID == "" || matchedTRM[t.UID] || t.RRN == "" {
			continue
		}
		if t.Amount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		for j := range mprUPI {
			mpr := &mprUPI[j]
			if mpr.UID == "" || matchedUPI[mpr.UID] {
				continue
			}
			if mpr.Amount.LessThanOrEqual(decimal.Zero) {
				continue
			}
			if mpr.RRN != t.RRN {
				continue
			}

			variance := t.Amount.Sub(mpr.Amount).Abs()
			if variance.LessThan(m.tolerance) {
				result.UPIMatches = append(result.UPIMatches, domain.PairMatch{
					TRM:            t,
					MPR:            mpr,
					Criteria:       domain.CriteriaRRN,
					AmountVariance: variance,
					Confidence:     domain.ConfidencePairMatch,
				})
				matchedTRM[t.UID] = true
				matchedUPI[mpr.UID] = true
				break
			}
		}
	}

	// Rule 2: card by RRN + approval code, for TRM records still unmatched.
	for i := range trm {
		t := &trm[i]
		if t.UID == "" || matchedTRM[t.UID] {
			continue
		}
		if t.RRN == "" || t.ApprovalCode == "" {
			continue
		}
		if t.Amount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		for j := range mprCard {
			mpr := &mprCard[j]
			if mpr.UID == "" || matchedCard[mpr.UID] {
				continue
			}
			if mpr.Amount.LessThanOrEqual(decimal.Zero) {
				continue
			}
			if mpr.RRN != t.RRN || mpr.ApprovalCode != t.ApprovalCode {
				continue
			}

			variance := t.Amount.Sub(mpr.Amount).Abs()
			if variance.LessThan(m.tolerance) {
				result.CardMatches = append(result.CardMatches, domain.PairMatch{
					TRM:            t,
					MPR:            mpr,
					Criteria:       domain.CriteriaRRNApprovalCode,
					AmountVariance: variance,
					Confidence:     domain.ConfidencePairMatch,
				})
				matchedTRM[t.UID] = true
				matchedCard[mpr.UID] = true
				break
			}
		}
	}

	for i := range trm {
		t := &trm[i]
		if !matchedTRM[t.UID] {
			result.UnmatchedTRM = append(result.UnmatchedTRM, t)
		}
	}

	m.logger.Info().
		Int("trm_records", len(trm)).
		Int("upi_matches", len(result.UPIMatches)).
		Int("card_matches", len(result.CardMatches)).
		Int("unmatched_trm", len(result.UnmatchedTRM)).
		Msg("stage-1 matching completed")

	return result
}
