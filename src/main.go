package main

import (
	"net/http"

	"recon-server/src/api"
	"recon-server/src/config"
	"recon-server/src/db"
	"recon-server/src/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New()

	// Connect to database
	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("DB connection failed")
	}
	defer pool.Close()

	db.InitCache()

	// Router
	router := api.NewRouter(pool, cfg, log)

	log.Info().Str("port", cfg.Port).Str("ingest_mode", cfg.IngestMode).Msg("API server running")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
