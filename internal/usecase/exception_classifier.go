package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gorecon/internal/domain"
)

// Severity thresholds in currency units. Comparisons are strict greater-than.
var (
	severityAmountCritical = decimal.NewFromInt(10000)
	severityAmountHigh     = decimal.NewFromInt(5000)
	severityAmountMedium   = decimal.NewFromInt(1000)

	mismatchCritical = decimal.NewFromInt(1000)
	mismatchHigh     = decimal.NewFromInt(500)
)

// ExceptionClassifier turns unmatched, duplicated and variant records into
// typed findings. A finding is the expected, successful output for
// mismatched money, never a runtime error. Detectors are independent: one
// record can produce several findings.
type ExceptionClassifier struct {
	asOf       time.Time
	tolerances domain.MatchTolerances
}

// NewExceptionClassifier creates a classifier. asOf anchors settlement-delay
// banding so two runs over identical inputs yield identical findings.
func NewExceptionClassifier(tolerances domain.MatchTolerances, asOf time.Time) *ExceptionClassifier {
	return &ExceptionClassifier{
		tolerances: tolerances,
		asOf:       asOf,
	}
}

// ClassifyInput carries the source sets plus both stage outputs.
type ClassifyInput struct {
	Sources *domain.SourceSets
	Stage1  PairMatchResult
	Stage2  ChainMatchResult
}

// Classify runs every detector and returns the findings in detector order,
// together with by-kind/by-severity tallies and the total amount at risk.
func (c *ExceptionClassifier) Classify(in ClassifyInput) ([]domain.Finding, domain.FindingTallies) {
	var findings []domain.Finding

	findings = append(findings, c.missingTRM(in.Sources.POS, in.Sources.TRM)...)
	findings = append(findings, c.missingMPR(in.Sources.TRM, in.Sources.MPRUPI, in.Sources.MPRCard)...)
	findings = append(findings, c.missingBank(in.Sources.MPRUPI, in.Sources.Bank)...)
	findings = append(findings, c.amountMismatches(in.Stage2.Chains)...)
	findings = append(findings, c.duplicateTRM(in.Sources.TRM)...)
	findings = append(findings, c.duplicateMPR(in.Sources.MPRUPI)...)
	findings = append(findings, c.duplicateBank(in.Sources.Bank)...)
	findings = append(findings, c.settlementDelays(in.Stage2.Chains)...)
	findings = append(findings, c.dataQuality(in.Sources)...)

	tallies := domain.NewFindingTallies()
	for _, f := range findings {
		tallies.Add(f)
	}

	return findings, tallies
}

// missingTRM flags non-cash POS transactions whose bill or transaction
// number never reached the payment gateway.
func (c *ExceptionClassifier) missingTRM(pos []domain.POSRecord, trm []domain.GatewayRecord) []domain.Finding {
	invoices := make(map[string]bool, len(trm))
	txnIDs := make(map[string]bool, len(trm))
	for i := range trm {
		if trm[i].Invoice != "" {
			invoices[trm[i].Invoice] = true
		}
		if trm[i].TransactionID != "" {
			txnIDs[trm[i].TransactionID] = true
		}
	}

	var findings []domain.Finding
	for i := range pos {
		p := &pos[i]
		if p.SettlementMode == domain.SettlementModeCash {
			continue
		}
		if invoices[p.BillNumber] || txnIDs[p.TransactionNumber] {
			continue
		}

		var severity domain.Severity
		switch {
		case p.NetAmount.GreaterThan(severityAmountCritical):
			severity = domain.SeverityCritical
		case p.NetAmount.GreaterThan(severityAmountHigh):
			severity = domain.SeverityHigh
		case p.NetAmount.GreaterThan(severityAmountMedium):
			severity = domain.SeverityMedium
		default:
			severity = domain.SeverityLow
		}

		date := p.Date
		findings = append(findings, domain.Finding{
			Kind:              domain.FindingMissingTRM,
			Severity:          severity,
			TransactionDate:   &date,
			StoreName:         p.StoreName,
			SourceSystem:      "POS",
			SourceRecordID:    p.ID,
			TransactionRef:    p.TransactionNumber,
			Amount:            p.NetAmount,
			Description:       fmt.Sprintf("POS transaction %s has no TRM record", p.BillNumber),
			RecommendedAction: "Verify with payment gateway. Check if transaction was processed.",
		})
	}

	return findings
}

// missingMPR flags TRM records whose RRN appears in neither MPR variant.
func (c *ExceptionClassifier) missingMPR(trm []domain.GatewayRecord, mprUPI, mprCard []domain.MerchantPortalRecord) []domain.Finding {
	rrns := make(map[string]bool, len(mprUPI)+len(mprCard))
	for i := range mprUPI {
		if mprUPI[i].RRN != "" {
			rrns[mprUPI[i].RRN] = true
		}
	}
	for i := range mprCard {
		if mprCard[i].RRN != "" {
			rrns[mprCard[i].RRN] = true
		}
	}

	var findings []domain.Finding
	for i := range trm {
		t := &trm[i]
		if t.RRN == "" || rrns[t.RRN] {
			continue
		}

		var severity domain.Severity
		switch {
		case t.Amount.GreaterThan(severityAmountCritical):
			severity = domain.SeverityCritical
		case t.Amount.GreaterThan(severityAmountHigh):
			severity = domain.SeverityHigh
		default:
			severity = domain.SeverityMedium
		}

		date := t.Date
		findings = append(findings, domain.Finding{
			Kind:              domain.FindingMissingMPR,
			Severity:          severity,
			TransactionDate:   &date,
			StoreName:         t.StoreName,
			SourceSystem:      "TRM",
			SourceRecordID:    t.UID,
			TransactionRef:    t.TransactionID,
			Amount:            t.Amount,
			Description:       fmt.Sprintf("TRM transaction RRN %s has no MPR record", t.RRN),
			RecommendedAction: "Check MPR data for this period. Verify RRN in merchant portal.",
		})
	}

	return findings
}

// missingBank flags MPR UPI records whose UTR is not contained in any bank
// credit narration or reference. Severity follows how long the settlement
// has been outstanding relative to the classifier's asOf date.
func (c *ExceptionClassifier) missingBank(mprUPI []domain.MerchantPortalRecord, bank []domain.BankCreditLine) []domain.Finding {
	var findings []domain.Finding

	for i := range mprUPI {
		mpr := &mprUPI[i]
		if mpr.UTRNumber == "" {
			continue
		}

		found := false
		for j := range bank {
			if strings.Contains(bank[j].Narration, mpr.UTRNumber) ||
				strings.Contains(bank[j].BankRef, mpr.UTRNumber) {
				found = true
				break
			}
		}
		if found {
			continue
		}

		severity := domain.SeverityHigh
		if mpr.SettlementDate != nil {
			switch days := daysSince(c.asOf, *mpr.SettlementDate); {
			case days > c.tolerances.SettlementDelayDays:
				severity = domain.SeverityCritical
			case days > 1:
				severity = domain.SeverityHigh
			default:
				severity = domain.SeverityMedium
			}
		}

		date := mpr.Date
		findings = append(findings, domain.Finding{
			Kind:              domain.FindingMissingBank,
			Severity:          severity,
			TransactionDate:   &date,
			StoreName:         mpr.StoreName,
			SourceSystem:      "MPR_UPI",
			SourceRecordID:    mpr.UID,
			TransactionRef:    mpr.TransactionID,
			Amount:            mpr.Amount,
			Description:       fmt.Sprintf("MPR UPI transaction UTR %s has no bank settlement", mpr.UTRNumber),
			RecommendedAction: "Check bank statement for this UTR. Contact bank if settlement is delayed.",
		})
	}

	return findings
}

// amountMismatches flags chains whose variance exceeds the chain tolerance.
// The finding amount is the variance itself, not the transaction amount.
func (c *ExceptionClassifier) amountMismatches(chains []domain.FullChainMatch) []domain.Finding {
	var findings []domain.Finding

	for i := range chains {
		chain := &chains[i]
		if !chain.AmountVariance.GreaterThan(c.tolerances.ChainMismatch) {
			continue
		}

		var severity domain.Severity
		switch {
		case chain.AmountVariance.GreaterThan(mismatchCritical):
			severity = domain.SeverityCritical
		case chain.AmountVariance.GreaterThan(mismatchHigh):
			severity = domain.SeverityHigh
		default:
			severity = domain.SeverityMedium
		}

		date := chain.TRM.Date
		findings = append(findings, domain.Finding{
			Kind:              domain.FindingAmountMismatch,
			Severity:          severity,
			TransactionDate:   &date,
			StoreName:         chain.TRM.StoreName,
			SourceSystem:      "RECONCILIATION",
			SourceRecordID:    chain.TRM.UID,
			TransactionRef:    chain.TRM.TransactionID,
			Amount:            chain.AmountVariance,
			Description:       fmt.Sprintf("Amount mismatch of %s in transaction chain", chain.AmountVariance),
			RecommendedAction: "Review transaction details across all systems. Identify source of variance.",
		})
	}

	return findings
}

func (c *ExceptionClassifier) duplicateTRM(trm []domain.GatewayRecord) []domain.Finding {
	var findings []domain.Finding
	seen := make(map[string]*domain.GatewayRecord, len(trm))

	for i := range trm {
		t := &trm[i]
		if t.RRN == "" {
			continue
		}

		original, ok := seen[t.RRN]
		if !ok {
			seen[t.RRN] = t
			continue
		}

		date := t.Date
		findings = append(findings, domain.Finding{
			Kind:              domain.FindingDuplicateTRM,
			Severity:          domain.SeverityHigh,
			TransactionDate:   &date,
			StoreName:         t.StoreName,
			SourceSystem:      "TRM",
			SourceRecordID:    t.UID,
			TransactionRef:    t.RRN,
			Amount:            t.Amount,
			Description:       fmt.Sprintf("Duplicate TRM record with rrn=%s (original %s)", t.RRN, original.UID),
			RecommendedAction: "Review both records. Remove duplicate from TRM source.",
		})
	}

	return findings
}

func (c *ExceptionClassifier) duplicateMPR(mprUPI []domain.MerchantPortalRecord) []domain.Finding {
	var findings []domain.Finding
	seen := make(map[string]*domain.MerchantPortalRecord, len(mprUPI))

	for i := range mprUPI {
		mpr := &mprUPI[i]
		if mpr.UTRNumber == "" {
			continue
		}

		original, ok := seen[mpr.UTRNumber]
		if !ok {
			seen[mpr.UTRNumber] = mpr
			continue
		}

		date := mpr.Date
		findings = append(findings, domain.Finding{
			Kind:              domain.FindingDuplicateMPR,
			Severity:          domain.SeverityHigh,
			TransactionDate:   &date,
			StoreName:         mpr.StoreName,
			SourceSystem:      "MPR_UPI",
			SourceRecordID:    mpr.UID,
			TransactionRef:    mpr.UTRNumber,
			Amount:            mpr.Amount,
			Description:       fmt.Sprintf("Duplicate MPR_UPI record with utr_number=%s (original %s)", mpr.UTRNumber, original.UID),
			RecommendedAction: "Review both records. Remove duplicate from MPR_UPI source.",
		})
	}

	return findings
}

func (c *ExceptionClassifier) duplicateBank(bank []domain.BankCreditLine) []domain.Finding {
	var findings []domain.Finding
	seen := make(map[string]*domain.BankCreditLine, len(bank))

	for i := range bank {
		credit := &bank[i]
		if credit.BankRef == "" {
			continue
		}

		original, ok := seen[credit.BankRef]
		if !ok {
			seen[credit.BankRef] = credit
			continue
		}

		date := credit.ValueDate
		findings = append(findings, domain.Finding{
			Kind:              domain.FindingDuplicateBank,
			Severity:          domain.SeverityHigh,
			TransactionDate:   &date,
			SourceSystem:      "BANK",
			SourceRecordID:    credit.LineID,
			TransactionRef:    credit.BankRef,
			Amount:            credit.Amount,
			Description:       fmt.Sprintf("Duplicate bank credit with bank_ref=%s (original %s)", credit.BankRef, original.LineID),
			RecommendedAction: "Review both statement lines. Confirm with bank whether the credit is double-posted.",
		})
	}

	return findings
}

// settlementDelays flags completed chains whose bank credit landed beyond
// the expected settlement window after the MPR settlement date.
func (c *ExceptionClassifier) settlementDelays(chains []domain.FullChainMatch) []domain.Finding {
	var findings []domain.Finding

	for i := range chains {
		chain := &chains[i]
		if chain.MPR.SettlementDate == nil {
			continue
		}

		delay := daysSince(chain.Bank.ValueDate, *chain.MPR.SettlementDate)
		if delay <= c.tolerances.SettlementDelayDays {
			continue
		}

		severity := domain.SeverityMedium
		if delay > 7 {
			severity = domain.SeverityHigh
		}

		date := chain.MPR.Date
		findings = append(findings, domain.Finding{
			Kind:              domain.FindingSettlementDelay,
			Severity:          severity,
			TransactionDate:   &date,
			StoreName:         chain.MPR.StoreName,
			SourceSystem:      "RECONCILIATION",
			SourceRecordID:    chain.MPR.UID,
			TransactionRef:    chain.MPR.TransactionID,
			Amount:            chain.MPR.Amount,
			Description:       fmt.Sprintf("Settlement credited %d days after MPR settlement date", delay),
			RecommendedAction: "Confirm settlement cycle with the acquirer. Flag recurring delays for escalation.",
		})
	}

	return findings
}

// dataQuality flags records that matching rules had to skip for missing
// identity or a non-positive amount. These are record-local input faults:
// they never abort the run.
func (c *ExceptionClassifier) dataQuality(sources *domain.SourceSets) []domain.Finding {
	var findings []domain.Finding

	add := func(system, id, ref, reason string, date time.Time) {
		d := date
		findings = append(findings, domain.Finding{
			Kind:              domain.FindingDataQuality,
			Severity:          domain.SeverityLow,
			TransactionDate:   &d,
			SourceSystem:      system,
			SourceRecordID:    id,
			TransactionRef:    ref,
			Amount:            decimal.Zero,
			Description:       fmt.Sprintf("%s record skipped by matching: %s", system, reason),
			RecommendedAction: "Fix the source extract and reload the period.",
		})
	}

	for i := range sources.TRM {
		t := &sources.TRM[i]
		if t.UID == "" {
			add("TRM", t.UID, t.TransactionID, "missing uid", t.Date)
		} else if t.Amount.LessThanOrEqual(decimal.Zero) {
			add("TRM", t.UID, t.TransactionID, "non-positive amount", t.Date)
		}
	}
	for i := range sources.MPRUPI {
		mpr := &sources.MPRUPI[i]
		if mpr.UID == "" {
			add("MPR_UPI", mpr.UID, mpr.TransactionID, "missing uid", mpr.Date)
		} else if mpr.Amount.LessThanOrEqual(decimal.Zero) {
			add("MPR_UPI", mpr.UID, mpr.TransactionID, "non-positive amount", mpr.Date)
		}
	}
	for i := range sources.MPRCard {
		mpr := &sources.MPRCard[i]
		if mpr.UID == "" {
			add("MPR_CARD", mpr.UID, mpr.TransactionID, "missing uid", mpr.Date)
		} else if mpr.Amount.LessThanOrEqual(decimal.Zero) {
			add("MPR_CARD", mpr.UID, mpr.TransactionID, "non-positive amount", mpr.Date)
		}
	}
	for i := range sources.Bank {
		credit := &sources.Bank[i]
		if credit.LineID == "" {
			add("BANK", credit.LineID, credit.BankRef, "missing statement line id", credit.ValueDate)
		} else if credit.Amount.LessThanOrEqual(decimal.Zero) {
			add("BANK", credit.LineID, credit.BankRef, "non-positive amount", credit.ValueDate)
		}
	}

	return findings
}

// daysSince returns whole days from then to now, negative when then is in
// the future.
func daysSince(now, then time.Time) int {
	return int(now.Sub(then).Hours() / 24)
}
