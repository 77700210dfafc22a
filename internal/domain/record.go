package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Instrument identifies the payment instrument behind a merchant portal record.
type Instrument string

const (
	InstrumentUPI  Instrument = "UPI"
	InstrumentCard Instrument = "CARD"
)

// SettlementModeCash marks POS rows settled in cash; they never enter matching.
const SettlementModeCash = "CASH"

// POSRecord is a point-of-sale transaction as exported by the store terminal.
type POSRecord struct {
	Date              time.Time
	ID                string
	StoreName         string
	BillNumber        string
	TransactionNumber string
	SettlementMode    string
	NetAmount         decimal.Decimal
}

// GatewayRecord is a payment-gateway (TRM) transaction record.
// RRN may be empty for transactions the gateway could not attribute.
type GatewayRecord struct {
	Date          time.Time
	UID           string
	StoreName     string
	TransactionID string
	Invoice       string
	RRN           string
	ApprovalCode  string
	Amount        decimal.Decimal
}

// MerchantPortalRecord is a settlement-level record from the payment aggregator.
// UPI and Card variants share the shape; UTRNumber is populated for UPI only.
type MerchantPortalRecord struct {
	Date           time.Time
	SettlementDate *time.Time
	UID            string
	Instrument     Instrument
	StoreName      string
	TransactionID  string
	RRN            string
	ApprovalCode   string
	UTRNumber      string
	Amount         decimal.Decimal
}

// BankCreditLine is a single CREDIT line from the bank account statement.
type BankCreditLine struct {
	ValueDate time.Time
	LineID    string
	BankRef   string
	Narration string
	Amount    decimal.Decimal
}

// SourceSets groups the five date-filtered record sets a run consumes.
// The loader guarantees each slice is ordered by (date, id) so greedy
// matching is reproducible across runs on identical data.
type SourceSets struct {
	POS     []POSRecord
	TRM     []GatewayRecord
	MPRUPI  []MerchantPortalRecord
	MPRCard []MerchantPortalRecord
	Bank    []BankCreditLine
}
