package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"recon-server/src/models"
)

const transactionColumns = `
	transaction_id, lifecycle_id, account_id, merchant_name, transaction_date,
	transaction_amount, COALESCE(currency, ''), COALESCE(status, ''),
	settlement_status, total_settled_amount, last_settlement_date
`

// TransactionStore is the Postgres implementation of recon.TransactionRepository.
type TransactionStore struct {
	pool *pgxpool.Pool
}

func NewTransactionStore(pool *pgxpool.Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.TransactionID, &t.LifecycleID, &t.AccountID, &t.MerchantName,
		&t.TransactionDate, &t.TransactionAmount, &t.Currency, &t.Status,
		&t.SettlementStatus, &t.TotalSettledAmount, &t.LastSettlementDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TransactionStore) ByID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`
	return scanTransaction(s.pool.QueryRow(ctx, query, transactionID))
}

func (s *TransactionStore) ByLifecycleID(ctx context.Context, lifecycleID string) (*models.Transaction, error) {
	// Uniqueness of lifecycle_id is assumed upstream; LIMIT 1 ordered by id
	// keeps the result stable if that assumption is ever broken.
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions WHERE lifecycle_id = $1
		ORDER BY transaction_id LIMIT 1
	`
	return scanTransaction(s.pool.QueryRow(ctx, query, lifecycleID))
}

func (s *TransactionStore) ByExact(ctx context.Context, accountID, merchantName string, date time.Time) (*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 AND merchant_name = $2 AND transaction_date = $3
		ORDER BY transaction_id LIMIT 1
	`
	return scanTransaction(s.pool.QueryRow(ctx, query, accountID, merchantName, date))
}

func (s *TransactionStore) ByFuzzy(ctx context.Context, accountID, merchantName string, date time.Time) (*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 AND merchant_name = $2
		  AND transaction_date BETWEEN $3 AND $4
		ORDER BY ABS(transaction_date - $5::date), transaction_id
		LIMIT 1
	`
	return scanTransaction(s.pool.QueryRow(ctx, query, accountID, merchantName,
		date.AddDate(0, 0, -1), date.AddDate(0, 0, 1), date))
}

func (s *TransactionStore) All(ctx context.Context) ([]models.Transaction, error) {
	return s.list(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY transaction_id`)
}

func (s *TransactionStore) ListByStatus(ctx context.Context, status string) ([]models.Transaction, error) {
	if status == "" {
		return s.All(ctx)
	}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions WHERE settlement_status = $1
		ORDER BY transaction_id
	`
	return s.list(ctx, query, status)
}

func (s *TransactionStore) list(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(&t.TransactionID, &t.LifecycleID, &t.AccountID, &t.MerchantName,
			&t.TransactionDate, &t.TransactionAmount, &t.Currency, &t.Status,
			&t.SettlementStatus, &t.TotalSettledAmount, &t.LastSettlementDate)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (s *TransactionStore) Count(ctx context.Context) (int, error) {
	var c int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&c)
	return c, err
}

func (s *TransactionStore) UpdateAggregates(ctx context.Context, transactionID string,
	status models.SettlementStatus, net decimal.Decimal, lastSettlementDate *time.Time) error {
	query := `
		UPDATE transactions
		SET settlement_status = $1, total_settled_amount = $2, last_settlement_date = $3
		WHERE transaction_id = $4
	`
	cmd, err := s.pool.Exec(ctx, query, status, net, lastSettlementDate, transactionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s not found", transactionID)
	}
	return nil
}
