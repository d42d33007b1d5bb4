package db

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"recon-server/src/models"
)

// fakeTx models Postgres transaction semantics: once a statement fails, the
// transaction is aborted and every later statement errors, until a rollback
// to the savepoint the failing statement ran under.

var errTxAborted = errors.New("current transaction is aborted, commands ignored until end of transaction block")

type txStub struct{}

func (txStub) Begin(context.Context) (pgx.Tx, error) { return nil, errors.New("not implemented") }
func (txStub) Commit(context.Context) error          { return nil }
func (txStub) Rollback(context.Context) error        { return nil }
func (txStub) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("not implemented")
}
func (txStub) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (txStub) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (txStub) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("not implemented")
}
func (txStub) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (txStub) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}
func (txStub) QueryRow(context.Context, string, ...any) pgx.Row { return nil }
func (txStub) Conn() *pgx.Conn                                  { return nil }

type fakeTx struct {
	txStub
	failInsertID string
	aborted      bool
	inserted     map[string]bool
	savepoints   int
}

func (f *fakeTx) Begin(context.Context) (pgx.Tx, error) {
	if f.aborted {
		return nil, errTxAborted
	}
	f.savepoints++
	return &fakeSavepoint{parent: f}, nil
}

func (f *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if f.aborted {
		return pgconn.CommandTag{}, errTxAborted
	}
	return f.exec(sql, args...)
}

func (f *fakeTx) exec(sql string, args ...any) (pgconn.CommandTag, error) {
	if strings.Contains(sql, "INSERT INTO settlement_history") {
		id := args[0].(string)
		if id == f.failInsertID {
			f.aborted = true
			return pgconn.CommandTag{}, errors.New("insert rejected")
		}
		f.inserted[id] = true
	}
	return pgconn.CommandTag{}, nil
}

func (f *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if f.aborted {
		return fakeRow{err: errTxAborted}
	}
	if strings.Contains(sql, "SELECT 1 FROM settlement_history") {
		return fakeRow{found: f.inserted[args[0].(string)]}
	}
	return fakeRow{}
}

func (f *fakeTx) Commit(context.Context) error {
	if f.aborted {
		return errTxAborted
	}
	return nil
}

type fakeSavepoint struct {
	txStub
	parent *fakeTx
}

func (s *fakeSavepoint) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if s.parent.aborted {
		return pgconn.CommandTag{}, errTxAborted
	}
	return s.parent.exec(sql, args...)
}

func (s *fakeSavepoint) Rollback(context.Context) error {
	// Rolling back to the savepoint clears the aborted state.
	s.parent.aborted = false
	return nil
}

func (s *fakeSavepoint) Commit(context.Context) error {
	if s.parent.aborted {
		return errTxAborted
	}
	return nil
}

type fakeRow struct {
	err   error
	found bool
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if !r.found {
		return pgx.ErrNoRows
	}
	if p, ok := dest[0].(*int); ok {
		*p = 1
	}
	return nil
}

func TestSettlementRun_FailedInsertKeepsRunUsable(t *testing.T) {
	tx := &fakeTx{failInsertID: "S-BAD", inserted: map[string]bool{}}
	run := &settlementRun{tx: tx}
	ctx := context.Background()

	if err := run.Insert(ctx, &models.Settlement{SettlementID: "S-1"}); err != nil {
		t.Fatalf("insert S-1: %v", err)
	}
	if err := run.Insert(ctx, &models.Settlement{SettlementID: "S-BAD"}); err == nil {
		t.Fatal("expected insert error for S-BAD")
	}

	// The rejected row must not have aborted the run: the duplicate check
	// and subsequent inserts still work, and the run still commits.
	exists, err := run.Exists(ctx, "S-1")
	if err != nil {
		t.Fatalf("exists after failed insert: %v", err)
	}
	if !exists {
		t.Fatal("S-1 should still be visible in the run")
	}
	if err := run.Insert(ctx, &models.Settlement{SettlementID: "S-2"}); err != nil {
		t.Fatalf("insert S-2 after failed insert: %v", err)
	}
	if err := run.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if tx.savepoints != 3 {
		t.Fatalf("savepoints got=%d want=%d", tx.savepoints, 3)
	}
}
