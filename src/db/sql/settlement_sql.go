package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"recon-server/src/models"
	"recon-server/src/recon"
)

// SettlementStore is the Postgres implementation of recon.SettlementRepository.
type SettlementStore struct {
	pool *pgxpool.Pool
}

func NewSettlementStore(pool *pgxpool.Pool) *SettlementStore {
	return &SettlementStore{pool: pool}
}

func (s *SettlementStore) ByTransaction(ctx context.Context, transactionID string) ([]models.Settlement, error) {
	query := `
		SELECT settlement_id, transaction_id, lifecycle_id, settlement_date,
		       settlement_amount, settlement_type, currency
		FROM settlement_history
		WHERE transaction_id = $1
		ORDER BY settlement_date ASC
	`
	rows, err := s.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		var st models.Settlement
		err := rows.Scan(&st.SettlementID, &st.TransactionID, &st.LifecycleID,
			&st.SettlementDate, &st.SettlementAmount, &st.SettlementType, &st.Currency)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, st)
	}
	return settlements, rows.Err()
}

func (s *SettlementStore) Count(ctx context.Context) (int, error) {
	var c int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM settlement_history`).Scan(&c)
	return c, err
}

func (s *SettlementStore) BeginRun(ctx context.Context) (recon.SettlementRun, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &settlementRun{tx: tx}, nil
}

// settlementRun wraps the storage transaction for one reconciliation run.
// Exists and Insert both go through the tx, so in-run inserts are visible to
// the duplicate check before the run commits.
type settlementRun struct {
	tx pgx.Tx
}

func (r *settlementRun) Clear(ctx context.Context) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM settlement_history`)
	return err
}

func (r *settlementRun) Exists(ctx context.Context, settlementID string) (bool, error) {
	var one int
	err := r.tx.QueryRow(ctx, `SELECT 1 FROM settlement_history WHERE settlement_id = $1`, settlementID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *settlementRun) Insert(ctx context.Context, st *models.Settlement) error {
	// Each insert runs under its own savepoint: a rejected row would
	// otherwise abort the run's transaction and fail every later statement,
	// turning a row-level problem into a fatal one.
	sp, err := r.tx.Begin(ctx)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO settlement_history
			(settlement_id, transaction_id, lifecycle_id, settlement_date,
			 settlement_amount, settlement_type, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = sp.Exec(ctx, query, st.SettlementID, st.TransactionID, st.LifecycleID,
		st.SettlementDate, st.SettlementAmount, st.SettlementType, st.Currency)
	if err != nil {
		_ = sp.Rollback(ctx)
		return err
	}
	return sp.Commit(ctx)
}

func (r *settlementRun) Commit(ctx context.Context) error {
	return r.tx.Commit(ctx)
}

func (r *settlementRun) Rollback(ctx context.Context) error {
	err := r.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}
