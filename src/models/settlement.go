package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SettlementType string

const (
	TypeDebit  SettlementType = "DEBIT"
	TypeCredit SettlementType = "CREDIT"
)

type Settlement struct {
	SettlementID     string          `json:"settlement_id"`
	TransactionID    string          `json:"transaction_id"`
	LifecycleID      *string         `json:"lifecycle_id"`
	SettlementDate   time.Time       `json:"settlement_date"`
	SettlementAmount decimal.Decimal `json:"settlement_amount"`
	SettlementType   SettlementType  `json:"settlement_type"`
	Currency         string          `json:"currency"`
}
