package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"recon-server/src/db"
	sqldb "recon-server/src/db/sql"
	"recon-server/src/models"
	"recon-server/src/recon"
)

// ListTransactions returns all transactions, optionally filtered by
// settlement status, with the issue flag and net settled amount derived
// through the same rule engine the recomputation path uses.
func ListTransactions(pool *pgxpool.Pool, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		cacheKey := "transactions:" + status
		if cached, found := db.Cache.Get(cacheKey); found {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(cached)
			return
		}

		txnStore := sqldb.NewTransactionStore(pool)
		txns, err := txnStore.ListByStatus(r.Context(), status)
		if err != nil {
			log.Error().Err(err).Str("status", status).Msg("failed to list transactions")
			http.Error(w, "failed to list transactions", http.StatusInternalServerError)
			return
		}

		aggregator := recon.NewAggregator(txnStore, sqldb.NewSettlementStore(pool))
		items, err := aggregator.Annotate(r.Context(), txns)
		if err != nil {
			log.Error().Err(err).Msg("failed to annotate transactions")
			http.Error(w, "failed to list transactions", http.StatusInternalServerError)
			return
		}

		db.SetTransactionCache(cacheKey, items)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(items)
	}
}

// GetTransaction returns one transaction with its full settlement history,
// ordered by settlement date ascending.
func GetTransaction(pool *pgxpool.Pool, log zerolog.Logger) http.HandlerFunc {
	type response struct {
		Transaction *models.Transaction `json:"transaction"`
		Settlements []models.Settlement `json:"settlements"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		txnID := chi.URLParam(r, "transaction_id")
		cacheKey := "transaction:" + txnID
		if cached, found := db.Cache.Get(cacheKey); found {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(cached)
			return
		}

		txn, err := sqldb.NewTransactionStore(pool).ByID(r.Context(), txnID)
		if err != nil {
			log.Error().Err(err).Str("transaction_id", txnID).Msg("failed to load transaction")
			http.Error(w, "failed to load transaction", http.StatusInternalServerError)
			return
		}
		if txn == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		settlements, err := sqldb.NewSettlementStore(pool).ByTransaction(r.Context(), txnID)
		if err != nil {
			log.Error().Err(err).Str("transaction_id", txnID).Msg("failed to load settlements")
			http.Error(w, "failed to load transaction", http.StatusInternalServerError)
			return
		}

		resp := response{Transaction: txn, Settlements: settlements}
		db.SetTransactionDetailCache(cacheKey, resp)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
