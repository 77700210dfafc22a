package usecase_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gorecon/internal/domain"
	"github.com/iho/gorecon/internal/usecase"
)

func day(d int) time.Time {
	return time.Date(2024, 12, d, 0, 0, 0, 0, time.UTC)
}

func trmRecord(uid, rrn, approval, amount string) domain.GatewayRecord {
	return domain.GatewayRecord{
		Date:          day(1),
		UID:           uid,
		StoreName:     "Store A",
		TransactionID: "TXN-" + uid,
		RRN:           rrn,
		ApprovalCode:  approval,
		Amount:        decimal.RequireFromString(amount),
	}
}

func mprRecord(uid string, instrument domain.Instrument, rrn, approval, utr, amount string) domain.MerchantPortalRecord {
	settled := day(2)
	return domain.MerchantPortalRecord{
		Date:           day(1),
		SettlementDate: &settled,
		UID:            uid,
		Instrument:     instrument,
		StoreName:      "Store A",
		TransactionID:  "MTXN-" + uid,
		RRN:            rrn,
		ApprovalCode:   approval,
		UTRNumber:      utr,
		Amount:         decimal.RequireFromString(amount),
	}
}

func newPairMatcher(tolerance string) *usecase.PairMatcher {
	return usecase.NewPairMatcher(decimal.RequireFromString(tolerance), zerolog.Nop())
}

func TestPairMatcher_UPIByRRN(t *testing.T) {
	tests := []struct {
		name         string
		trmAmount    string
		mprAmount    string
		wantMatch    bool
		wantVariance string
	}{
		{
			name:         "amounts within tolerance",
			trmAmount:    "100.00",
			mprAmount:    "100.50",
			wantMatch:    true,
			wantVariance: "0.50",
		},
		{
			name:      "variance equal to tolerance rejected",
			trmAmount: "100.00",
			mprAmount: "101.00",
			wantMatch: false,
		},
		{
			name:      "variance above tolerance rejected",
			trmAmount: "100.00",
			mprAmount: "105.00",
			wantMatch: false,
		},
		{
			name:         "exact amounts",
			trmAmount:    "250.00",
			mprAmount:    "250.00",
			wantMatch:    true,
			wantVariance: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trm := []domain.GatewayRecord{trmRecord("T1", "RRN001", "", tt.trmAmount)}
			mprUPI := []domain.MerchantPortalRecord{mprRecord("M1", domain.InstrumentUPI, "RRN001", "", "UTR001", tt.mprAmount)}

			result := newPairMatcher("1.00").Match(trm, mprUPI, nil)

			if !tt.wantMatch {
				if len(result.UPIMatches) != 0 {
					t.Fatalf("expected no match, got %d", len(result.UPIMatches))
				}
				if len(result.UnmatchedTRM) != 1 || result.UnmatchedTRM[0].UID != "T1" {
					t.Errorf("expected T1 unmatched, got %+v", result.UnmatchedTRM)
				}
				return
			}

			if len(result.UPIMatches) != 1 {
				t.Fatalf("expected 1 UPI match, got %d", len(result.UPIMatches))
			}
			match := result.UPIMatches[0]
			if match.Criteria != domain.CriteriaRRN {
				t.Errorf("criteria = %s, want %s", match.Criteria, domain.CriteriaRRN)
			}
			if match.Confidence != domain.ConfidencePairMatch {
				t.Errorf("confidence = %v, want %v", match.Confidence, domain.ConfidencePairMatch)
			}
			if !match.AmountVariance.Equal(decimal.RequireFromString(tt.wantVariance)) {
				t.Errorf("variance = %s, want %s", match.AmountVariance, tt.wantVariance)
			}
			if len(result.UnmatchedTRM) != 0 {
				t.Errorf("expected no unmatched TRM, got %d", len(result.UnmatchedTRM))
			}
		})
	}
}

func TestPairMatcher_CardByRRNAndApprovalCode(t *testing.T) {
	trm := []domain.GatewayRecord{
		trmRecord("T1", "RRN100", "AP1", "500.00"),
		trmRecord("T2", "RRN100", "AP2", "300.00"),
	}
	mprCard := []domain.MerchantPortalRecord{
		mprRecord("C1", domain.InstrumentCard, "RRN100", "AP2", "", "300.25"),
	}

	result := newPairMatcher("1.00").Match(trm, nil, mprCard)

	if len(result.CardMatches) != 1 {
		t.Fatalf("expected 1 card match, got %d", len(result.CardMatches))
	}
	match := result.CardMatches[0]
	if match.TRM.UID != "T2" {
		t.Errorf("matched TRM = %s, want T2 (approval code must discriminate)", match.TRM.UID)
	}
	if match.Criteria != domain.CriteriaRRNApprovalCode {
		t.Errorf("criteria = %s, want %s", match.Criteria, domain.CriteriaRRNApprovalCode)
	}
	if len(result.UnmatchedTRM) != 1 || result.UnmatchedTRM[0].UID != "T1" {
		t.Errorf("expected only T1 unmatched, got %+v", result.UnmatchedTRM)
	}
}

func TestPairMatcher_NoDoubleClaim(t *testing.T) {
	// Two TRM records share an RRN; a single MPR record may satisfy only one.
	trm := []domain.GatewayRecord{
		trmRecord("T1", "RRN200", "", "100.00"),
		trmRecord("T2", "RRN200", "", "100.00"),
	}
	mprUPI := []domain.MerchantPortalRecord{
		mprRecord("M1", domain.InstrumentUPI, "RRN200", "", "UTR200", "100.00"),
	}

	result := newPairMatcher("1.00").Match(trm, mprUPI, nil)

	if len(result.UPIMatches) != 1 {
		t.Fatalf("expected exactly 1 match, got %d", len(result.UPIMatches))
	}
	if result.UPIMatches[0].TRM.UID != "T1" {
		t.Errorf("first-fit should claim T1, got %s", result.UPIMatches[0].TRM.UID)
	}
	if len(result.UnmatchedTRM) != 1 || result.UnmatchedTRM[0].UID != "T2" {
		t.Errorf("expected T2 unmatched, got %+v", result.UnmatchedTRM)
	}
}

func TestPairMatcher_Conservation(t *testing.T) {
	trm := []domain.GatewayRecord{
		trmRecord("T1", "RRN1", "", "10.00"),
		trmRecord("T2", "RRN2", "AP1", "20.00"),
		trmRecord("T3", "RRN3", "", "30.00"),
		trmRecord("T4", "", "", "40.00"),
	}
	mprUPI := []domain.MerchantPortalRecord{
		mprRecord("M1", domain.InstrumentUPI, "RRN1", "", "UTR1", "10.00"),
	}
	mprCard := []domain.MerchantPortalRecord{
		mprRecord("C1", domain.InstrumentCard, "RRN2", "AP1", "", "20.00"),
	}

	result := newPairMatcher("1.00").Match(trm, mprUPI, mprCard)

	total := len(result.UPIMatches) + len(result.CardMatches) + len(result.UnmatchedTRM)
	if total != len(trm) {
		t.Errorf("matched + unmatched = %d, want %d (every TRM record lands in exactly one bucket)", total, len(trm))
	}
	if len(result.Pairs()) != 2 {
		t.Errorf("Pairs() = %d elements, want 2", len(result.Pairs()))
	}
}

func TestPairMatcher_Deterministic(t *testing.T) {
	trm := []domain.GatewayRecord{
		trmRecord("T1", "RRN1", "", "10.00"),
		trmRecord("T2", "RRN1", "", "10.00"),
		trmRecord("T3", "RRN2", "", "50.00"),
	}
	mprUPI := []domain.MerchantPortalRecord{
		mprRecord("M1", domain.InstrumentUPI, "RRN1", "", "UTR1", "10.00"),
		mprRecord("M2", domain.InstrumentUPI, "RRN2", "", "UTR2", "50.00"),
	}

	matcher := newPairMatcher("1.00")
	first := matcher.Match(trm, mprUPI, nil)

	for i := 0; i < 10; i++ {
		again := matcher.Match(trm, mprUPI, nil)
		if len(again.UPIMatches) != len(first.UPIMatches) {
			t.Fatalf("run %d: match count changed from %d to %d", i, len(first.UPIMatches), len(again.UPIMatches))
		}
		for j := range again.UPIMatches {
			if again.UPIMatches[j].TRM.UID != first.UPIMatches[j].TRM.UID ||
				again.UPIMatches[j].MPR.UID != first.UPIMatches[j].MPR.UID {
				t.Fatalf("run %d: pair %d changed", i, j)
			}
		}
	}
}

func TestPairMatcher_SkipsRecordsWithoutIdentity(t *testing.T) {
	trm := []domain.GatewayRecord{
		{Date: day(1), UID: "", RRN: "RRN1", Amount: decimal.RequireFromString("10.00")},
		trmRecord("T2", "", "", "20.00"),
	}
	mprUPI := []domain.MerchantPortalRecord{
		mprRecord("M1", domain.InstrumentUPI, "RRN1", "", "UTR1", "10.00"),
	}

	result := newPairMatcher("1.00").Match(trm, mprUPI, nil)

	if len(result.UPIMatches) != 0 {
		t.Errorf("records without uid or rrn must not match, got %d matches", len(result.UPIMatches))
	}
}

func TestPairMatcher_SkipsRecordsWithoutPositiveAmount(t *testing.T) {
	trm := []domain.GatewayRecord{
		trmRecord("T1", "RRN-Z", "", "0"),
		trmRecord("T2", "RRN2", "AP2", "0"),
		trmRecord("T3", "RRN3", "", "0.50"),
	}
	mprUPI := []domain.MerchantPortalRecord{
		mprRecord("M1", domain.InstrumentUPI, "RRN-Z", "", "UTR1", "0"),
		mprRecord("M3", domain.InstrumentUPI, "RRN3", "", "UTR3", "0"),
	}
	mprCard := []domain.MerchantPortalRecord{
		mprRecord("M2", domain.InstrumentCard, "RRN2", "AP2", "", "0.25"),
	}

	result := newPairMatcher("1.00").Match(trm, mprUPI, mprCard)

	if got := len(result.UPIMatches) + len(result.CardMatches); got != 0 {
		t.Errorf("zero-amount records must not match, got %d matches", got)
	}
	if len(result.UnmatchedTRM) != 3 {
		t.Errorf("expected all 3 TRM records unmatched, got %d", len(result.UnmatchedTRM))
	}
}
