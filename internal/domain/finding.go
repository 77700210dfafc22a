package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FindingKind classifies a reconciliation finding. The set is closed: the
// classifier switches over it exhaustively and persistence rejects unknown
// values.
type FindingKind string

const (
	FindingMissingTRM      FindingKind = "MISSING_TRM"
	FindingMissingMPR      FindingKind = "MISSING_MPR"
	FindingMissingBank     FindingKind = "MISSING_BANK"
	FindingMissingPOS      FindingKind = "MISSING_POS"
	FindingAmountMismatch  FindingKind = "AMOUNT_MISMATCH"
	FindingDuplicateTRM    FindingKind = "DUPLICATE_TRM"
	FindingDuplicateMPR    FindingKind = "DUPLICATE_MPR"
	FindingDuplicateBank   FindingKind = "DUPLICATE_BANK"
	FindingDataQuality     FindingKind = "DATA_QUALITY"
	FindingSettlementDelay FindingKind = "SETTLEMENT_DELAY"
	FindingPartialMatch    FindingKind = "PARTIAL_MATCH"
)

// FindingKinds lists every valid kind in a fixed order.
var FindingKinds = []FindingKind{
	FindingMissingTRM,
	FindingMissingMPR,
	FindingMissingBank,
	FindingMissingPOS,
	FindingAmountMismatch,
	FindingDuplicateTRM,
	FindingDuplicateMPR,
	FindingDuplicateBank,
	FindingDataQuality,
	FindingSettlementDelay,
	FindingPartialMatch,
}

// Valid reports whether k is one of the closed kind values.
func (k FindingKind) Valid() bool {
	for _, known := range FindingKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Severity ranks the operational urgency of a finding.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Severities lists all severity levels from least to most urgent.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Rank returns an ordinal for sorting; higher is more urgent.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Finding is the domain-level output of the exception classifier: an
// unmatched, duplicated or variant record. It is never a runtime error.
type Finding struct {
	TransactionDate   *time.Time
	Kind              FindingKind
	Severity          Severity
	StoreName         string
	SourceSystem      string
	SourceRecordID    string
	TransactionRef    string
	Amount            decimal.Decimal
	Description       string
	RecommendedAction string
}

// FindingTallies aggregates findings for the run summary.
type FindingTallies struct {
	ByKind            map[FindingKind]int
	BySeverity        map[Severity]int
	Total             int
	TotalAmountAtRisk decimal.Decimal
}

// NewFindingTallies returns tallies with every bucket initialized to zero.
func NewFindingTallies() FindingTallies {
	byKind := make(map[FindingKind]int, len(FindingKinds))
	for _, k := range FindingKinds {
		byKind[k] = 0
	}
	bySeverity := make(map[Severity]int, len(Severities))
	for _, s := range Severities {
		bySeverity[s] = 0
	}
	return FindingTallies{
		ByKind:            byKind,
		BySeverity:        bySeverity,
		TotalAmountAtRisk: decimal.Zero,
	}
}

// Add records one finding in the tallies.
func (t *FindingTallies) Add(f Finding) {
	t.Total++
	t.ByKind[f.Kind]++
	t.BySeverity[f.Severity]++
	t.TotalAmountAtRisk = t.TotalAmountAtRisk.Add(f.Amount)
}
