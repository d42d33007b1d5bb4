package recon

import (
	"context"
	"fmt"
	"strings"

	"recon-server/src/models"
)

type MatchOutcome int

const (
	// OutcomeMatched: an eligible, currency-consistent transaction claimed the record.
	OutcomeMatched MatchOutcome = iota
	// OutcomeNoMatch: no transaction found by any strategy. A normal result.
	OutcomeNoMatch
	// OutcomeIneligible: a transaction matched but cannot accept settlements.
	OutcomeIneligible
	// OutcomeCurrencyMismatch: a hard row error, reported distinctly from unmatched.
	OutcomeCurrencyMismatch
)

type MatchResult struct {
	Outcome     MatchOutcome
	Transaction *models.Transaction
	Reason      string
}

// Matcher resolves which transaction an incoming settlement record belongs
// to. Strategies are tried in order, first success wins:
//
//  1. exact lifecycle id lookup, when the record carries one
//  2. exact (account, merchant, transaction date) lookup
//  3. fuzzy lookup within a one calendar day window, nearest date first,
//     lowest transaction id on ties
type Matcher struct {
	txns TransactionRepository
}

func NewMatcher(txns TransactionRepository) *Matcher {
	return &Matcher{txns: txns}
}

func (m *Matcher) Match(ctx context.Context, rec *Record) (MatchResult, error) {
	var txn *models.Transaction
	var err error

	if rec.LifecycleID != nil {
		txn, err = m.txns.ByLifecycleID(ctx, *rec.LifecycleID)
		if err != nil {
			return MatchResult{}, fmt.Errorf("lifecycle lookup: %w", err)
		}
	}
	if txn == nil {
		txn, err = m.txns.ByExact(ctx, rec.AccountID, rec.MerchantName, rec.TransactionDate)
		if err != nil {
			return MatchResult{}, fmt.Errorf("exact lookup: %w", err)
		}
	}
	if txn == nil {
		txn, err = m.txns.ByFuzzy(ctx, rec.AccountID, rec.MerchantName, rec.TransactionDate)
		if err != nil {
			return MatchResult{}, fmt.Errorf("fuzzy lookup: %w", err)
		}
	}
	if txn == nil {
		return MatchResult{Outcome: OutcomeNoMatch, Reason: "no matching transaction"}, nil
	}

	if txn.Status == "FAILED" || txn.Status == "DECLINED" || txn.SettlementStatus == models.StatusNotApplicable {
		return MatchResult{Outcome: OutcomeIneligible, Transaction: txn, Reason: "transaction not eligible"}, nil
	}

	if txn.Currency != "" && !strings.EqualFold(txn.Currency, rec.Currency) {
		return MatchResult{
			Outcome:     OutcomeCurrencyMismatch,
			Transaction: txn,
			Reason:      fmt.Sprintf("currency mismatch: txn=%s record=%s", txn.Currency, rec.Currency),
		}, nil
	}

	return MatchResult{Outcome: OutcomeMatched, Transaction: txn}, nil
}
