package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"recon-server/src/db"
)

// InitDB bootstraps the schema. Safe to call repeatedly.
func InitDB(pool *pgxpool.Pool, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.InitSchema(r.Context(), pool); err != nil {
			log.Error().Err(err).Msg("schema init failed")
			http.Error(w, "schema init failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}
}

func ClearCache(log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cacheName := chi.URLParam(r, "cache_name")
		switch cacheName {
		case "transactions":
			db.ClearAllTransactionCaches()
		case "transaction-details":
			db.ClearAllTransactionDetailCaches()
		case "all":
			db.ClearAllTransactionCaches()
			db.ClearAllTransactionDetailCaches()
		default:
			http.Error(w, "unknown cache name", http.StatusBadRequest)
			return
		}
		log.Info().Str("cache", cacheName).Msg("cache cleared")
		w.WriteHeader(http.StatusOK)
	}
}
