package domain

import (
	"github.com/shopspring/decimal"
)

// MatchCriteria names the key rule that produced a stage-1 pair.
type MatchCriteria string

const (
	CriteriaRRN             MatchCriteria = "RRN"
	CriteriaRRNApprovalCode MatchCriteria = "RRN+ApprovalCode"
)

// ChainMatchType names the rule that extended a pair to a bank credit.
type ChainMatchType string

const (
	ChainUPI  ChainMatchType = "FULL_CHAIN_UPI"
	ChainCard ChainMatchType = "FULL_CHAIN_CARD"
)

// Match confidence scores, in percent.
const (
	ConfidencePairMatch = 95.0
	ConfidenceChainUPI  = 90.0
	ConfidenceChainCard = 85.0
)

// PairMatch links one TRM record to one MPR record. Each side appears in at
// most one PairMatch per run.
type PairMatch struct {
	TRM            *GatewayRecord
	MPR            *MerchantPortalRecord
	Criteria       MatchCriteria
	AmountVariance decimal.Decimal
	Confidence     float64
}

// FullChainMatch extends a PairMatch to a bank credit, completing the
// TRM -> MPR -> Bank settlement chain.
type FullChainMatch struct {
	TRM            *GatewayRecord
	MPR            *MerchantPortalRecord
	Bank           *BankCreditLine
	Type           ChainMatchType
	AmountVariance decimal.Decimal
	Confidence     float64
}
