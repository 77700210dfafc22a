package usecase_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gorecon/internal/domain"
	"github.com/iho/gorecon/internal/usecase"
)

func TestAggregateSummary(t *testing.T) {
	trm1 := trmRecord("T1", "RRN1", "", "100.00")
	trm2 := trmRecord("T2", "RRN2", "", "200.00")
	trm3 := trmRecord("T3", "RRN3", "", "300.00")
	mpr1 := mprRecord("M1", domain.InstrumentUPI, "RRN1", "", "UTR1", "100.00")
	mpr2 := mprRecord("M2", domain.InstrumentUPI, "RRN2", "", "UTR2", "200.00")
	credit := bankCredit("B1", "", "UTR1", "100.00", day(2))

	pair1 := domain.PairMatch{TRM: &trm1, MPR: &mpr1, Criteria: domain.CriteriaRRN}
	pair2 := domain.PairMatch{TRM: &trm2, MPR: &mpr2, Criteria: domain.CriteriaRRN}

	sources := &domain.SourceSets{
		POS: []domain.POSRecord{
			posRecord("P1", "BILL1", "TXN1", "UPI", "100.00"),
			posRecord("P2", "BILL2", "TXN2", "UPI", "200.00"),
			posRecord("P3", "BILL3", "TXN3", "UPI", "300.00"),
			posRecord("P4", "BILL4", "TXN4", "UPI", "400.00"),
		},
		TRM:    []domain.GatewayRecord{trm1, trm2, trm3},
		MPRUPI: []domain.MerchantPortalRecord{mpr1, mpr2},
		Bank:   []domain.BankCreditLine{credit},
	}

	tallies := domain.NewFindingTallies()
	tallies.Add(domain.Finding{
		Kind:     domain.FindingMissingBank,
		Severity: domain.SeverityHigh,
		Amount:   decimal.RequireFromString("200.00"),
	})

	startedAt := time.Date(2024, 12, 20, 10, 0, 0, 0, time.UTC)
	summary := usecase.AggregateSummary(usecase.AggregateInput{
		BatchID: "MATCH_20241201_100000",
		Range:   domain.DateRange{Start: day(1), End: day(7)},
		Sources: sources,
		Stage1: usecase.PairMatchResult{
			UPIMatches:   []domain.PairMatch{pair1, pair2},
			UnmatchedTRM: []*domain.GatewayRecord{&trm3},
		},
		Stage2: usecase.ChainMatchResult{
			Chains: []domain.FullChainMatch{
				{TRM: &trm1, MPR: &mpr1, Bank: &credit, Type: domain.ChainUPI},
			},
			Partials: []domain.PairMatch{pair2},
		},
		Tallies:     tallies,
		StartedAt:   startedAt,
		CompletedAt: startedAt.Add(3 * time.Second),
	})

	if summary.Sources.Total() != 10 {
		t.Errorf("source total = %d, want 10", summary.Sources.Total())
	}
	if summary.Matches.TRMMPRUPI != 2 || summary.Matches.FullChain != 1 {
		t.Errorf("match counts = %+v", summary.Matches)
	}
	if summary.Unmatched.TRMOnly != 1 || summary.Unmatched.PartialPairs != 1 {
		t.Errorf("unmatched counts = %+v", summary.Unmatched)
	}

	if !summary.Financial.TotalPOSAmount.Equal(decimal.RequireFromString("1000.00")) {
		t.Errorf("total POS = %s, want 1000.00", summary.Financial.TotalPOSAmount)
	}
	if !summary.Financial.TotalMatchedAmount.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("matched = %s, want 100.00 (only full chains count)", summary.Financial.TotalMatchedAmount)
	}
	// Unmatched money: T3 never paired plus T2 whose pair found no credit.
	if !summary.Financial.TotalUnmatchedAmount.Equal(decimal.RequireFromString("500.00")) {
		t.Errorf("unmatched = %s, want 500.00", summary.Financial.TotalUnmatchedAmount)
	}
	if !summary.Financial.TotalAmountAtRisk.Equal(decimal.RequireFromString("200.00")) {
		t.Errorf("at risk = %s, want 200.00", summary.Financial.TotalAmountAtRisk)
	}

	wantRate := 25.0 // 1 full chain out of 4 POS transactions
	if summary.Financial.MatchRatePercentage != wantRate {
		t.Errorf("match rate = %v, want %v", summary.Financial.MatchRatePercentage, wantRate)
	}
	if summary.ProcessingTime != 3*time.Second {
		t.Errorf("processing time = %s, want 3s", summary.ProcessingTime)
	}
}

func TestAggregateSummary_NoPOSRecords(t *testing.T) {
	summary := usecase.AggregateSummary(usecase.AggregateInput{
		BatchID: "MATCH_20241201_100000",
		Range:   domain.DateRange{Start: day(1), End: day(7)},
		Sources: &domain.SourceSets{},
		Tallies: domain.NewFindingTallies(),
	})

	if summary.Financial.MatchRatePercentage != 0 {
		t.Errorf("match rate with zero POS = %v, want 0", summary.Financial.MatchRatePercentage)
	}
	if !summary.Financial.TotalPOSAmount.IsZero() {
		t.Errorf("total POS = %s, want 0", summary.Financial.TotalPOSAmount)
	}
}
