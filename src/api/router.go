package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"recon-server/src/config"
	"recon-server/src/handlers"
	"recon-server/src/middleware"
	"recon-server/src/recon"
)

func NewRouter(pool *pgxpool.Pool, cfg config.Config, log zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		// Read paths stay public
		r.Get("/transactions", handlers.ListTransactions(pool, log))
		r.Get("/transactions/{transaction_id}", handlers.GetTransaction(pool, log))
		r.Get("/dashboard/summary", handlers.DashboardSummary(pool, log))

		// Mutating routes
		r.With(middleware.JWTAuthMiddleware(cfg.JWTSecret)).Group(func(r chi.Router) {
			r.Post("/init-db", handlers.InitDB(pool, log))
			r.Post("/reconcile", handlers.Reconcile(pool, recon.IngestMode(cfg.IngestMode), log))
			r.Post("/admin/cache/clear/{cache_name}", handlers.ClearCache(log))
		})
	})

	return r
}
