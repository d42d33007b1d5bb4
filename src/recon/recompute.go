package recon

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"recon-server/src/models"
)

// Recomputer refreshes a transaction's persisted aggregates from its full
// settlement history. The persisted settlement_status, total_settled_amount
// and last_settlement_date are a cache of what DeriveStatus would say; this
// is the one place that refreshes it.
type Recomputer struct {
	txns        TransactionRepository
	settlements SettlementRepository
}

func NewRecomputer(txns TransactionRepository, settlements SettlementRepository) *Recomputer {
	return &Recomputer{txns: txns, settlements: settlements}
}

type RecomputeResult struct {
	Status             models.SettlementStatus
	Issue              models.IssueFlag
	NetSettled         decimal.Decimal
	LastSettlementDate *time.Time
}

// Recompute reloads the transaction's settlement history, re-derives its
// aggregates and persists them. A missing transaction is a no-op (nil, nil).
// Idempotent: with no intervening settlement change, a second call persists
// and returns identical state.
func (r *Recomputer) Recompute(ctx context.Context, transactionID string) (*RecomputeResult, error) {
	txn, err := r.txns.ByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("load transaction %s: %w", transactionID, err)
	}
	if txn == nil {
		return nil, nil
	}

	rows, err := r.settlements.ByTransaction(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("load settlements for %s: %w", transactionID, err)
	}

	net, hadCredit, lastDate := aggregate(rows)
	status, issue := DeriveStatus(net, txn.TransactionAmount, hadCredit, len(rows) > 0,
		txn.TransactionDate, lastDate, time.Now())

	if err := r.txns.UpdateAggregates(ctx, transactionID, status, net, lastDate); err != nil {
		return nil, fmt.Errorf("update transaction %s: %w", transactionID, err)
	}

	return &RecomputeResult{
		Status:             status,
		Issue:              issue,
		NetSettled:         net,
		LastSettlementDate: lastDate,
	}, nil
}

// aggregate folds a settlement history into net settled amount (debits minus
// credits, rounded to 2 decimals), whether any credit exists, and the latest
// settlement date.
func aggregate(rows []models.Settlement) (net decimal.Decimal, hadCredit bool, lastDate *time.Time) {
	debit := decimal.Zero
	credit := decimal.Zero
	for i, s := range rows {
		switch s.SettlementType {
		case models.TypeCredit:
			credit = credit.Add(s.SettlementAmount)
			hadCredit = true
		default:
			debit = debit.Add(s.SettlementAmount)
		}
		if lastDate == nil || s.SettlementDate.After(*lastDate) {
			lastDate = &rows[i].SettlementDate
		}
	}
	return debit.Sub(credit).Round(2), hadCredit, lastDate
}
