package usecase

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gorecon/internal/domain"
)

// ChainMatcher performs stage-2 matching: it extends stage-1 pairs to bank
// credits, completing TRM -> MPR -> Bank settlement chains. UPI pairs match
// by UTR containment in the credit narration or reference; card pairs match
// by settlement-date proximity. A bank credit is claimed by at most one
// chain. Exclusion state is local to each Extend call.
type ChainMatcher struct {
	logger         zerolog.Logger
	tolerance      decimal.Decimal
	dateWindowDays int
}

// NewChainMatcher creates a stage-2 matcher. Accepted chains satisfy
// |mpr.amount - bank.amount| < tolerance, strictly; card chains additionally
// require the credit value date within dateWindowDays of the MPR settlement
// date (T through T+window settlement).
func NewChainMatcher(tolerance decimal.Decimal, dateWindowDays int, logger zerolog.Logger) *ChainMatcher {
	return &ChainMatcher{
		tolerance:      tolerance,
		dateWindowDays: dateWindowDays,
		logger:         logger,
	}
}

// ChainMatchResult is the outcome of one stage-2 pass. Partials are stage-1
// pairs that found no bank credit; the classifier treats them as
// missing-bank candidates.
type ChainMatchResult struct {
	Chains   []domain.FullChainMatch
	Partials []domain.PairMatch
}

// Extend walks the stage-1 result and attaches a bank credit to each pair
// where one can be found. Pairs keep their stage-1 order: UPI first, then
// card, so identical inputs produce identical chains.
func (m *ChainMatcher) Extend(pairs PairMatchResult, bank []domain.BankCreditLine) ChainMatchResult {
	result := ChainMatchResult{}
	matchedBank := make(map[string]bool, len(bank))

	for i := range pairs.UPIMatches {
		pair := pairs.UPIMatches[i]

		credit := m.findUPICredit(pair.MPR, bank, matchedBank)
		if credit == nil {
			result.Partials = append(result.Partials, pair)
			continue
		}

		variance := pair.MPR.Amount.Sub(credit.Amount).Abs()
		result.Chains = append(result.Chains, domain.FullChainMatch{
			TRM:            pair.TRM,
			MPR:            pair.MPR,
			Bank:           credit,
			Type:           domain.ChainUPI,
			AmountVariance: variance,
			Confidence:     domain.ConfidenceChainUPI,
		})
		matchedBank[credit.LineID] = true
	}

	for i := range pairs.CardMatches {
		pair := pairs.CardMatches[i]

		credit := m.findCardCredit(pair.MPR, bank, matchedBank)
		if credit == nil {
			result.Partials = append(result.Partials, pair)
			continue
		}

		variance := pair.MPR.Amount.Sub(credit.Amount).Abs()
		result.Chains = append(result.Chains, domain.FullChainMatch{
			TRM:            pair.TRM,
			MPR:            pair.MPR,
			Bank:           credit,
			Type:           domain.ChainCard,
			AmountVariance: variance,
			Confidence:     domain.ConfidenceChainCard,
		})
		matchedBank[credit.LineID] = true
	}

	m.logger.Info().
		Int("pairs", len(pairs.UPIMatches)+len(pairs.CardMatches)).
		Int("full_chains", len(result.Chains)).
		Int("partials", len(result.Partials)).
		Msg("stage-2 matching completed")

	return result
}

// findUPICredit locates the first unclaimed credit whose narration or bank
// reference contains the UTR, within amount tolerance.
func (m *ChainMatcher) findUPICredit(mpr *domain.MerchantPortalRecord, bank []domain.BankCreditLine, matched map[string]bool) *domain.BankCreditLine {
	if mpr.UTRNumber == "" {
		return nil
	}

	for i := range bank {
		credit := &bank[i]
		if credit.LineID == "" || matched[credit.LineID] {
			continue
		}
		if credit.Amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if !strings.Contains(credit.Narration, mpr.UTRNumber) &&
			!strings.Contains(credit.BankRef, mpr.UTRNumber) {
			continue
		}

		if mpr.Amount.Sub(credit.Amount).Abs().LessThan(m.tolerance) {
			return credit
		}
	}

	return nil
}

// findCardCredit locates the first unclaimed credit whose value date falls
// within the settlement window, within amount tolerance.
func (m *ChainMatcher) findCardCredit(mpr *domain.MerchantPortalRecord, bank []domain.BankCreditLine, matched map[string]bool) *domain.BankCreditLine {
	if mpr.SettlementDate == nil {
		return nil
	}

	for i := range bank {
		credit := &bank[i]
		if credit.LineID == "" || matched[credit.LineID] {
			continue
		}
		if credit.Amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if daysApart(credit.ValueDate, *mpr.SettlementDate) > m.dateWindowDays {
			continue
		}

		if mpr.Amount.Sub(credit.Amount).Abs().LessThan(m.tolerance) {
			return credit
		}
	}

	return nil
}

// daysApart returns the absolute difference between two dates in whole days.
func daysApart(a, b time.Time) int {
	days := int(a.Sub(b).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}
