package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	sqldb "recon-server/src/db/sql"
	"recon-server/src/recon"
)

// DashboardSummary computes the fleet-wide reconciliation summary. Always a
// full recomputation; this response is deliberately never cached.
func DashboardSummary(pool *pgxpool.Pool, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		aggregator := recon.NewAggregator(
			sqldb.NewTransactionStore(pool),
			sqldb.NewSettlementStore(pool),
		)
		summary, err := aggregator.Summarize(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("failed to compute dashboard summary")
			http.Error(w, "failed to compute dashboard summary", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(summary)
	}
}
