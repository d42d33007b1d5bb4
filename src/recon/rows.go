package recon

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"recon-server/src/models"
)

// Row is one already-tokenized settlement row from an external report.
// The container format (CSV, JSON, ...) is the caller's concern.
type Row map[string]string

// Record is a settlement row that passed field validation.
type Record struct {
	SettlementID    string
	LifecycleID     *string
	AccountID       string
	MerchantName    string
	TransactionDate time.Time
	SettlementDate  time.Time
	Amount          decimal.Decimal
	Type            models.SettlementType
	Currency        string
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts the date formats seen in processor reports and
// normalizes to a date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseRow validates one row and returns the parsed record, or a reason
// string when the row must be skipped. Validation failures never abort a
// batch; the pipeline records the reason and moves on.
func parseRow(row Row) (*Record, string) {
	sid := strings.TrimSpace(row["settlement_id"])
	if sid == "" {
		return nil, "missing settlement_id"
	}

	rec := &Record{
		SettlementID: sid,
		AccountID:    strings.TrimSpace(row["account_id"]),
		MerchantName: strings.TrimSpace(row["merchant_name"]),
		Currency:     strings.ToUpper(strings.TrimSpace(row["currency"])),
	}
	if lid := strings.TrimSpace(row["lifecycle_id"]); lid != "" {
		rec.LifecycleID = &lid
	}

	var err error
	if rec.TransactionDate, err = ParseDate(row["transaction_date"]); err != nil {
		return nil, fmt.Sprintf("invalid transaction_date: %v", err)
	}
	if rec.SettlementDate, err = ParseDate(row["settlement_date"]); err != nil {
		return nil, fmt.Sprintf("invalid settlement_date: %v", err)
	}

	rec.Amount, err = decimal.NewFromString(strings.TrimSpace(row["settlement_amount"]))
	if err != nil {
		return nil, "invalid settlement_amount"
	}
	if !rec.Amount.IsPositive() {
		return nil, "non-positive settlement_amount"
	}

	switch t := models.SettlementType(strings.ToUpper(strings.TrimSpace(row["settlement_type"]))); t {
	case models.TypeDebit, models.TypeCredit:
		rec.Type = t
	default:
		return nil, "settlement_type must be DEBIT or CREDIT"
	}

	return rec, ""
}
