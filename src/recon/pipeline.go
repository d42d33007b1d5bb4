package recon

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"recon-server/src/models"
)

// IngestMode controls what a run does to settlements from earlier runs.
type IngestMode string

const (
	// ModeReplace clears the whole ledger at the start of a run, so the
	// uploaded report fully replaces prior history.
	ModeReplace IngestMode = "replace"
	// ModeAppend keeps prior history; rows whose settlement id is already in
	// the ledger count as already existing.
	ModeAppend IngestMode = "append"
)

// Pipeline orchestrates one reconciliation run: validate each row, reject
// duplicates, match it to a transaction, persist accepted settlements inside
// a single storage transaction, then refresh aggregates for every touched
// transaction and compute a fresh dashboard.
//
// Runs are single-writer: two concurrent Ingest calls against the same
// ledger interfere destructively in replace mode.
type Pipeline struct {
	txns        TransactionRepository
	settlements SettlementRepository
	matcher     *Matcher
	mode        IngestMode
	log         zerolog.Logger
}

func NewPipeline(txns TransactionRepository, settlements SettlementRepository,
	mode IngestMode, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		txns:        txns,
		settlements: settlements,
		matcher:     NewMatcher(txns),
		mode:        mode,
		log:         log,
	}
}

// Ingest processes a batch of tokenized settlement rows. Row-level problems
// (validation failures, currency mismatches, unmatched rows, duplicates,
// per-row insert failures) never abort the batch; they are collected into
// the report. A returned error means the run failed fatally and no
// settlement row from this batch survived.
func (p *Pipeline) Ingest(ctx context.Context, rows []Row) (*models.IngestionReport, error) {
	runID := uuid.NewString()
	log := p.log.With().Str("run_id", runID).Logger()

	report := &models.IngestionReport{RunID: runID}

	run, err := p.settlements.BeginRun(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	defer run.Rollback(ctx)

	if p.mode == ModeReplace {
		if err := run.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear ledger: %w", err)
		}
	}

	touched := map[string]struct{}{}
	for _, row := range rows {
		report.ProcessedRows++

		rec, reason := parseRow(row)
		if reason != "" {
			report.Errors = append(report.Errors, models.RowError{Row: row, Error: reason})
			continue
		}

		exists, err := run.Exists(ctx, rec.SettlementID)
		if err != nil {
			report.Errors = append(report.Errors, models.RowError{Row: row, Error: fmt.Sprintf("duplicate check failed: %v", err)})
			continue
		}
		if exists {
			report.AlreadyExisting++
			continue
		}

		res, err := p.matcher.Match(ctx, rec)
		if err != nil {
			report.Errors = append(report.Errors, models.RowError{Row: row, Error: fmt.Sprintf("match failed: %v", err)})
			continue
		}
		switch res.Outcome {
		case OutcomeNoMatch, OutcomeIneligible:
			report.UnmatchedRows = append(report.UnmatchedRows, models.UnmatchedRow{Row: row, Reason: res.Reason})
			continue
		case OutcomeCurrencyMismatch:
			report.Errors = append(report.Errors, models.RowError{Row: row, Error: res.Reason})
			continue
		}

		s := &models.Settlement{
			SettlementID:     rec.SettlementID,
			TransactionID:    res.Transaction.TransactionID,
			LifecycleID:      res.Transaction.LifecycleID,
			SettlementDate:   rec.SettlementDate,
			SettlementAmount: rec.Amount.Round(2),
			SettlementType:   rec.Type,
			Currency:         rec.Currency,
		}
		if err := run.Insert(ctx, s); err != nil {
			report.Errors = append(report.Errors, models.RowError{Row: row, Error: fmt.Sprintf("insert failed: %v", err)})
			continue
		}
		report.InsertedSettlements++
		report.MatchedRows++
		touched[res.Transaction.TransactionID] = struct{}{}
	}

	// Commit is the ordering barrier: recomputation must see every insert
	// from this run.
	if err := run.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit run: %w", err)
	}

	recomputer := NewRecomputer(p.txns, p.settlements)
	for _, id := range sortedKeys(touched) {
		if _, err := recomputer.Recompute(ctx, id); err != nil {
			report.RecalculationErrors = append(report.RecalculationErrors,
				fmt.Sprintf("recompute transaction %s: %v", id, err))
		}
	}
	report.UpdatedTransactions = len(touched)

	dashboard, err := NewAggregator(p.txns, p.settlements).Summarize(ctx)
	if err != nil {
		report.RecalculationErrors = append(report.RecalculationErrors,
			fmt.Sprintf("dashboard summary: %v", err))
	}
	report.Dashboard = dashboard

	log.Info().
		Int("processed", report.ProcessedRows).
		Int("inserted", report.InsertedSettlements).
		Int("already_existing", report.AlreadyExisting).
		Int("unmatched", len(report.UnmatchedRows)).
		Int("errors", len(report.Errors)).
		Int("updated_transactions", report.UpdatedTransactions).
		Msg("reconciliation run complete")

	return report, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
