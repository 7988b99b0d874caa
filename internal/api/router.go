package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lisdrive/repasse/internal/repository"
	"github.com/lisdrive/repasse/internal/settlement"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	engine *settlement.Engine,
	settRepo *repository.SettlementRepo,
	entryRepo *repository.EntryRepo,
) http.Handler {
	h := &Handlers{
		engine:    engine,
		settRepo:  settRepo,
		entryRepo: entryRepo,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		// Processing.
		r.Post("/weeks/{weekID}/process", h.ProcessWeek)
		r.Get("/weeks/{weekID}/settlements", h.ListWeekSettlements)
		r.Get("/weeks/{weekID}/summary", h.GetWeekSummary)

		// Settlements.
		r.Get("/settlements", h.ListSettlements)
		r.Get("/settlements/{id}", h.GetSettlement)
		r.Get("/settlements/{id}/display", h.GetSettlementDisplay)
		r.Post("/settlements/{id}/pay", h.MarkSettlementPaid)

		// Entry loading (the normalizing import pipeline lives elsewhere;
		// this is the door it pushes through).
		r.Post("/entries/import", h.ImportEntries)
	})

	return r
}
