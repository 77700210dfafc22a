package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Default tolerance constants, in currency units.
const (
	DefaultTRMMPRTolerance        = "1.00"
	DefaultMPRBankTolerance       = "10.00"
	DefaultChainMismatchTolerance = "100.00"
	DefaultBankDateWindowDays     = 2
	DefaultSettlementDelayDays    = 3
)

// MatchTolerances holds the amount tolerances and date windows a run uses.
// All amount comparisons against them are strict less-than.
type MatchTolerances struct {
	TRMMPR              decimal.Decimal
	MPRBank             decimal.Decimal
	ChainMismatch       decimal.Decimal
	BankDateWindowDays  int
	SettlementDelayDays int
}

// DefaultTolerances returns the production defaults.
func DefaultTolerances() MatchTolerances {
	return MatchTolerances{
		TRMMPR:              decimal.RequireFromString(DefaultTRMMPRTolerance),
		MPRBank:             decimal.RequireFromString(DefaultMPRBankTolerance),
		ChainMismatch:       decimal.RequireFromString(DefaultChainMismatchTolerance),
		BankDateWindowDays:  DefaultBankDateWindowDays,
		SettlementDelayDays: DefaultSettlementDelayDays,
	}
}

// Validate checks every tolerance before a run. A non-positive tolerance or
// window is a configuration fault and must fail fast.
func (t MatchTolerances) Validate() error {
	if t.TRMMPR.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: trm-mpr tolerance %s", ErrInvalidTolerance, t.TRMMPR)
	}
	if t.MPRBank.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: mpr-bank tolerance %s", ErrInvalidTolerance, t.MPRBank)
	}
	if t.ChainMismatch.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: chain mismatch tolerance %s", ErrInvalidTolerance, t.ChainMismatch)
	}
	if t.BankDateWindowDays <= 0 {
		return fmt.Errorf("%w: bank date window %d days", ErrInvalidDateWindow, t.BankDateWindowDays)
	}
	if t.SettlementDelayDays <= 0 {
		return fmt.Errorf("%w: settlement delay window %d days", ErrInvalidDateWindow, t.SettlementDelayDays)
	}
	return nil
}
