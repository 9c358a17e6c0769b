package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/engezna/settlement-engine/internal/finance"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(repos finance.Repos) http.Handler {
	h := newHandlers(repos)

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		// Financial facts and summaries.
		r.Get("/finance/facts", h.ListFacts)
		r.Get("/finance/summary", h.GetAdminSummary)
		r.Get("/finance/summary/provider/{id}", h.GetProviderSummary)
		r.Get("/finance/summary/regional", h.GetRegionalSummaries)
		r.Get("/finance/summary/regional/{governorateID}", h.GetRegionalSummary)

		// Settlements.
		r.Get("/settlements", h.ListSettlements)
		r.Get("/settlements/export/csv", h.ExportSettlementsCSV)
		r.Get("/settlements/export/report", h.ExportSettlementsReport)
		r.Get("/settlements/{id}", h.GetSettlement)
		r.Get("/settlements/{id}/report", h.GetSettlementReport)
		r.Post("/settlements/{id}/payments", h.RecordPayment)
		r.Get("/settlements/{id}/audit", h.GetAuditLog)
	})

	return r
}
