package recon

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"recon-server/src/models"
)

// In-memory repository pair used by the core tests. Lookup and ordering
// semantics mirror the Postgres stores in src/db/sql.

type memTransactionRepo struct {
	txns         map[string]*models.Transaction
	failUpdateID string
}

func newMemTransactionRepo(txns ...models.Transaction) *memTransactionRepo {
	r := &memTransactionRepo{txns: map[string]*models.Transaction{}}
	for i := range txns {
		t := txns[i]
		r.txns[t.TransactionID] = &t
	}
	return r
}

func (r *memTransactionRepo) ByID(_ context.Context, id string) (*models.Transaction, error) {
	if t, ok := r.txns[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *memTransactionRepo) ByLifecycleID(_ context.Context, lifecycleID string) (*models.Transaction, error) {
	var found []*models.Transaction
	for _, t := range r.txns {
		if t.LifecycleID != nil && *t.LifecycleID == lifecycleID {
			found = append(found, t)
		}
	}
	if len(found) == 0 {
		return nil, nil
	}
	sort.Slice(found, func(i, j int) bool { return found[i].TransactionID < found[j].TransactionID })
	cp := *found[0]
	return &cp, nil
}

func (r *memTransactionRepo) ByExact(_ context.Context, accountID, merchantName string, date time.Time) (*models.Transaction, error) {
	var found []*models.Transaction
	for _, t := range r.txns {
		if t.AccountID == accountID && t.MerchantName == merchantName && t.TransactionDate.Equal(date) {
			found = append(found, t)
		}
	}
	if len(found) == 0 {
		return nil, nil
	}
	sort.Slice(found, func(i, j int) bool { return found[i].TransactionID < found[j].TransactionID })
	cp := *found[0]
	return &cp, nil
}

func (r *memTransactionRepo) ByFuzzy(_ context.Context, accountID, merchantName string, date time.Time) (*models.Transaction, error) {
	type candidate struct {
		t    *models.Transaction
		dist int
	}
	var cands []candidate
	for _, t := range r.txns {
		if t.AccountID != accountID || t.MerchantName != merchantName {
			continue
		}
		dist := DaysBetween(date, t.TransactionDate)
		if dist < 0 {
			dist = -dist
		}
		if dist <= 1 {
			cands = append(cands, candidate{t: t, dist: dist})
		}
	}
	if len(cands) == 0 {
		return nil, nil
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].t.TransactionID < cands[j].t.TransactionID
	})
	cp := *cands[0].t
	return &cp, nil
}

func (r *memTransactionRepo) All(_ context.Context) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, t := range r.txns {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TransactionID < out[j].TransactionID })
	return out, nil
}

func (r *memTransactionRepo) ListByStatus(ctx context.Context, status string) ([]models.Transaction, error) {
	all, _ := r.All(ctx)
	if status == "" {
		return all, nil
	}
	var out []models.Transaction
	for _, t := range all {
		if string(t.SettlementStatus) == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTransactionRepo) Count(_ context.Context) (int, error) {
	return len(r.txns), nil
}

func (r *memTransactionRepo) UpdateAggregates(_ context.Context, id string, status models.SettlementStatus,
	net decimal.Decimal, lastSettlementDate *time.Time) error {
	if id == r.failUpdateID {
		return fmt.Errorf("update rejected")
	}
	t, ok := r.txns[id]
	if !ok {
		return fmt.Errorf("transaction %s not found", id)
	}
	t.SettlementStatus = status
	t.TotalSettledAmount = net
	t.LastSettlementDate = lastSettlementDate
	return nil
}

type memSettlementRepo struct {
	rows []models.Settlement

	failInsertID string // Insert fails for this settlement id
	failCommit   bool   // Commit fails, simulating a fatal storage failure
}

func (r *memSettlementRepo) ByTransaction(_ context.Context, transactionID string) ([]models.Settlement, error) {
	var out []models.Settlement
	for _, s := range r.rows {
		if s.TransactionID == transactionID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SettlementDate.Before(out[j].SettlementDate) })
	return out, nil
}

func (r *memSettlementRepo) Count(_ context.Context) (int, error) {
	return len(r.rows), nil
}

func (r *memSettlementRepo) BeginRun(_ context.Context) (SettlementRun, error) {
	return &memRun{repo: r}, nil
}

type memRun struct {
	repo      *memSettlementRepo
	pending   []models.Settlement
	cleared   bool
	committed bool
}

func (r *memRun) Clear(_ context.Context) error {
	r.cleared = true
	return nil
}

func (r *memRun) Exists(_ context.Context, settlementID string) (bool, error) {
	if !r.cleared {
		for _, s := range r.repo.rows {
			if s.SettlementID == settlementID {
				return true, nil
			}
		}
	}
	for _, s := range r.pending {
		if s.SettlementID == settlementID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRun) Insert(_ context.Context, s *models.Settlement) error {
	if r.repo.failInsertID == s.SettlementID {
		return fmt.Errorf("insert rejected")
	}
	r.pending = append(r.pending, *s)
	return nil
}

func (r *memRun) Commit(_ context.Context) error {
	if r.repo.failCommit {
		return fmt.Errorf("storage unavailable")
	}
	if r.cleared {
		r.repo.rows = nil
	}
	r.repo.rows = append(r.repo.rows, r.pending...)
	r.committed = true
	return nil
}

func (r *memRun) Rollback(_ context.Context) error {
	if !r.committed {
		r.pending = nil
	}
	return nil
}
