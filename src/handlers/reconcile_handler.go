package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"recon-server/src/db"
	sqldb "recon-server/src/db/sql"
	"recon-server/src/recon"
	"recon-server/src/util"
)

// Reconcile runs one reconciliation batch. The report CSV arrives either as
// a multipart "file" upload or as JSON {"csv_text": "..."}.
func Reconcile(pool *pgxpool.Pool, mode recon.IngestMode, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := readCSVContent(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rows, err := util.ReadRows(strings.NewReader(content))
		if err != nil {
			log.Error().Err(err).Msg("failed to tokenize settlement report")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		pipeline := recon.NewPipeline(
			sqldb.NewTransactionStore(pool),
			sqldb.NewSettlementStore(pool),
			mode,
			log,
		)
		report, err := pipeline.Ingest(r.Context(), rows)
		if err != nil {
			log.Error().Err(err).Msg("reconciliation run failed")
			http.Error(w, "reconciliation run failed", http.StatusInternalServerError)
			return
		}

		// Aggregates changed; cached read responses are stale now.
		db.ClearAllTransactionCaches()
		db.ClearAllTransactionDetailCaches()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	}
}

func readCSVContent(r *http.Request) (string, error) {
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		b, err := io.ReadAll(file)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	var req struct {
		CSVText string `json:"csv_text"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.CSVText == "" {
		return "", fmt.Errorf("no CSV provided")
	}
	return req.CSVText, nil
}
