package recon

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"recon-server/src/models"
)

// Aggregator computes fleet-wide reconciliation health. It re-derives every
// transaction's status and issue flag from the current settlement history
// through DeriveStatus rather than trusting persisted aggregates, so a stale
// cache cannot skew the summary.
type Aggregator struct {
	txns        TransactionRepository
	settlements SettlementRepository
}

func NewAggregator(txns TransactionRepository, settlements SettlementRepository) *Aggregator {
	return &Aggregator{txns: txns, settlements: settlements}
}

// Summarize recomputes the dashboard from scratch. Never cached.
func (a *Aggregator) Summarize(ctx context.Context) (*models.DashboardSummary, error) {
	txns, err := a.txns.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	totalSettlements, err := a.settlements.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count settlements: %w", err)
	}

	now := time.Now()
	breakdown := map[string]int{}
	var critical, warning, settledCount int
	outstanding := decimal.Zero
	var daysToSettle []int

	for _, t := range txns {
		rows, err := a.settlements.ByTransaction(ctx, t.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("load settlements for %s: %w", t.TransactionID, err)
		}
		net, hadCredit, lastDate := aggregate(rows)
		status, issue := DeriveStatus(net, t.TransactionAmount, hadCredit, len(rows) > 0,
			t.TransactionDate, lastDate, now)

		breakdown[string(status)]++
		switch issue {
		case models.IssueCritical:
			critical++
		case models.IssueWarning:
			warning++
		}

		if diff := t.TransactionAmount.Sub(net); diff.IsPositive() {
			outstanding = outstanding.Add(diff)
		}
		if lastDate != nil {
			daysToSettle = append(daysToSettle, DaysBetween(t.TransactionDate, *lastDate))
			settledCount++
		}
	}

	avgDays := 0.0
	if len(daysToSettle) > 0 {
		sum := 0
		for _, d := range daysToSettle {
			sum += d
		}
		avgDays = float64(sum) / float64(len(daysToSettle))
	}
	rate := 0.0
	if len(txns) > 0 {
		rate = float64(settledCount) / float64(len(txns))
	}

	return &models.DashboardSummary{
		TotalTransactions:      len(txns),
		TotalSettlements:       totalSettlements,
		BreakdownByStatus:      breakdown,
		CriticalIssues:         critical,
		WarningIssues:          warning,
		TotalOutstandingAmount: outstanding.Round(2),
		AvgDaysToSettle:        round2(avgDays),
		SettlementRate:         round2(rate),
	}, nil
}

// Annotate derives the issue flag and net settled amount for each listed
// transaction, through the same rule engine the dashboard and recomputation
// use.
func (a *Aggregator) Annotate(ctx context.Context, txns []models.Transaction) ([]models.TransactionListItem, error) {
	now := time.Now()
	items := make([]models.TransactionListItem, 0, len(txns))
	for _, t := range txns {
		rows, err := a.settlements.ByTransaction(ctx, t.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("load settlements for %s: %w", t.TransactionID, err)
		}
		net, hadCredit, lastDate := aggregate(rows)
		_, issue := DeriveStatus(net, t.TransactionAmount, hadCredit, len(rows) > 0,
			t.TransactionDate, lastDate, now)
		items = append(items, models.TransactionListItem{
			Transaction: t,
			IssueFlag:   issue,
			NetSettled:  net,
		})
	}
	return items, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
