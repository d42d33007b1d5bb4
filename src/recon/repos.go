package recon

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"recon-server/src/models"
)

// TransactionRepository is the read/write surface the core needs over
// internally recorded transactions. Lookup methods return (nil, nil) when no
// transaction matches; absence is a normal outcome, not an error.
type TransactionRepository interface {
	ByID(ctx context.Context, transactionID string) (*models.Transaction, error)
	ByLifecycleID(ctx context.Context, lifecycleID string) (*models.Transaction, error)
	// ByExact matches on the (account, merchant, transaction date) triple.
	ByExact(ctx context.Context, accountID, merchantName string, date time.Time) (*models.Transaction, error)
	// ByFuzzy returns the best candidate with the same account and merchant
	// whose date falls within one calendar day of date: minimum absolute day
	// distance first, lowest transaction id on ties.
	ByFuzzy(ctx context.Context, accountID, merchantName string, date time.Time) (*models.Transaction, error)
	All(ctx context.Context) ([]models.Transaction, error)
	// ListByStatus filters on settlement_status; an empty filter lists all.
	ListByStatus(ctx context.Context, status string) ([]models.Transaction, error)
	Count(ctx context.Context) (int, error)
	UpdateAggregates(ctx context.Context, transactionID string, status models.SettlementStatus,
		net decimal.Decimal, lastSettlementDate *time.Time) error
}

// SettlementRepository is the surface over the settlement ledger. Writes only
// happen inside a run.
type SettlementRepository interface {
	// ByTransaction returns the settlements linked to a transaction, ordered
	// by settlement date ascending.
	ByTransaction(ctx context.Context, transactionID string) ([]models.Settlement, error)
	Count(ctx context.Context) (int, error)
	// BeginRun opens the storage transaction for one reconciliation run. All
	// clears and inserts of the run happen inside it, so a fatal failure
	// rolls the whole batch back.
	BeginRun(ctx context.Context) (SettlementRun, error)
}

// SettlementRun is the write handle for a single reconciliation run.
// Rollback after a successful Commit is a no-op.
type SettlementRun interface {
	Clear(ctx context.Context) error
	// Exists reports whether a settlement id is already in the ledger,
	// including rows inserted earlier in this run.
	Exists(ctx context.Context, settlementID string) (bool, error)
	Insert(ctx context.Context, s *models.Settlement) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
