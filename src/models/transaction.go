package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SettlementStatus string

const (
	StatusPending       SettlementStatus = "PENDING"
	StatusPartial       SettlementStatus = "PARTIAL"
	StatusFullySettled  SettlementStatus = "FULLY_SETTLED"
	StatusOverSettled   SettlementStatus = "OVER_SETTLED"
	StatusRefunded      SettlementStatus = "REFUNDED"
	StatusNotApplicable SettlementStatus = "NOT_APPLICABLE"
)

type IssueFlag string

const (
	IssueNone     IssueFlag = "NONE"
	IssueWarning  IssueFlag = "WARNING"
	IssueCritical IssueFlag = "CRITICAL"
)

type Transaction struct {
	TransactionID      string           `json:"transaction_id"`
	LifecycleID        *string          `json:"lifecycle_id"`
	AccountID          string           `json:"account_id"`
	MerchantName       string           `json:"merchant_name"`
	TransactionDate    time.Time        `json:"transaction_date"`
	TransactionAmount  decimal.Decimal  `json:"transaction_amount"`
	Currency           string           `json:"currency"`
	Status             string           `json:"status"`
	SettlementStatus   SettlementStatus `json:"settlement_status"`
	TotalSettledAmount decimal.Decimal  `json:"total_settled_amount"`
	LastSettlementDate *time.Time       `json:"last_settlement_date"`
}

// TransactionListItem is a transaction plus the freshly derived issue flag
// and net settled amount returned by the list endpoint.
type TransactionListItem struct {
	Transaction
	IssueFlag  IssueFlag       `json:"issue_flag"`
	NetSettled decimal.Decimal `json:"net_settled"`
}
