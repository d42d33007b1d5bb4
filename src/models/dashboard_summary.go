package models

import "github.com/shopspring/decimal"

type DashboardSummary struct {
	TotalTransactions      int             `json:"total_transactions"`
	TotalSettlements       int             `json:"total_settlements"`
	BreakdownByStatus      map[string]int  `json:"breakdown_by_status"`
	CriticalIssues         int             `json:"critical_issues"`
	WarningIssues          int             `json:"warning_issues"`
	TotalOutstandingAmount decimal.Decimal `json:"total_outstanding_amount"`
	AvgDaysToSettle        float64         `json:"avg_days_to_settle"`
	SettlementRate         float64         `json:"settlement_rate"`
}
