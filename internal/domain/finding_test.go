package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFindingKind_Valid(t *testing.T) {
	for _, k := range FindingKinds {
		if !k.Valid() {
			t.Errorf("kind %s should be valid", k)
		}
	}

	if FindingKind("SOMETHING_ELSE").Valid() {
		t.Error("unknown kind should not be valid")
	}
}

func TestSeverity_Rank(t *testing.T) {
	prev := -1
	for _, s := range Severities {
		if s.Rank() <= prev {
			t.Errorf("severity %s rank %d not increasing", s, s.Rank())
		}
		prev = s.Rank()
	}
}

func TestFindingTallies_Add(t *testing.T) {
	tallies := NewFindingTallies()

	tallies.Add(Finding{
		Kind:     FindingMissingTRM,
		Severity: SeverityCritical,
		Amount:   decimal.RequireFromString("12000.00"),
	})
	tallies.Add(Finding{
		Kind:     FindingMissingTRM,
		Severity: SeverityLow,
		Amount:   decimal.RequireFromString("100.00"),
	})
	tallies.Add(Finding{
		Kind:     FindingDuplicateTRM,
		Severity: SeverityHigh,
		Amount:   decimal.RequireFromString("50.00"),
	})

	if tallies.Total != 3 {
		t.Errorf("Total = %d, want 3", tallies.Total)
	}
	if tallies.ByKind[FindingMissingTRM] != 2 {
		t.Errorf("ByKind[MISSING_TRM] = %d, want 2", tallies.ByKind[FindingMissingTRM])
	}
	if tallies.BySeverity[SeverityHigh] != 1 {
		t.Errorf("BySeverity[HIGH] = %d, want 1", tallies.BySeverity[SeverityHigh])
	}

	want := decimal.RequireFromString("12150.00")
	if !tallies.TotalAmountAtRisk.Equal(want) {
		t.Errorf("TotalAmountAtRisk = %s, want %s", tallies.TotalAmountAtRisk, want)
	}

	// Every bucket is present even when empty, so report rendering never
	// needs nil checks.
	if _, ok := tallies.ByKind[FindingPartialMatch]; !ok {
		t.Error("expected zero bucket for PARTIAL_MATCH")
	}
}

func TestMatchTolerances_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*MatchTolerances)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(*MatchTolerances) {},
		},
		{
			name:    "zero trm-mpr tolerance",
			mutate:  func(mt *MatchTolerances) { mt.TRMMPR = decimal.Zero },
			wantErr: true,
		},
		{
			name:    "negative mpr-bank tolerance",
			mutate:  func(mt *MatchTolerances) { mt.MPRBank = decimal.NewFromInt(-1) },
			wantErr: true,
		},
		{
			name:    "zero chain tolerance",
			mutate:  func(mt *MatchTolerances) { mt.ChainMismatch = decimal.Zero },
			wantErr: true,
		},
		{
			name:    "zero date window",
			mutate:  func(mt *MatchTolerances) { mt.BankDateWindowDays = 0 },
			wantErr: true,
		},
		{
			name:    "zero delay window",
			mutate:  func(mt *MatchTolerances) { mt.SettlementDelayDays = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tol := DefaultTolerances()
			tt.mutate(&tol)

			err := tol.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
