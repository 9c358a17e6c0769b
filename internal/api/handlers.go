package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/engezna/settlement-engine/internal/domain"
	"github.com/engezna/settlement-engine/internal/export"
	"github.com/engezna/settlement-engine/internal/finance"
	"github.com/engezna/settlement-engine/internal/money"
)

// Handlers groups all HTTP handler methods and their dependencies. Scoped
// finance services are built per caller; regional ones are reused across
// requests so their provider-id cache actually gets hits.
type Handlers struct {
	repos finance.Repos

	admin *finance.Service

	mu       sync.Mutex
	regional map[string]*finance.Service
}

func newHandlers(repos finance.Repos) *Handlers {
	return &Handlers{
		repos:    repos,
		admin:    finance.NewAdminService(repos),
		regional: make(map[string]*finance.Service),
	}
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return nil
		}
	}
	return &t
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseLocale(s string) money.Locale {
	if s == "en" {
		return money.LocaleEnglish
	}
	return money.LocaleArabic
}

// serviceFor resolves the caller's scope from query params. Absent scope
// params mean the platform-wide admin view.
func (h *Handlers) serviceFor(r *http.Request) *finance.Service {
	q := r.URL.Query()
	switch q.Get("as") {
	case "provider":
		return finance.NewProviderService(h.repos, q.Get("provider_id"))
	case "regional":
		return h.regionalService(splitCSV(q.Get("governorates")))
	default:
		return h.admin
	}
}

// maxRegionalServices caps the scope-keyed service map. The key is built
// from a caller-supplied query param, so without a cap a client could grow
// the map without limit.
const maxRegionalServices = 64

func (h *Handlers) regionalService(governorateIDs []string) *finance.Service {
	sorted := append([]string(nil), governorateIDs...)
	sort.Strings(sorted)
	key := strings.Join(sorted, ",")

	h.mu.Lock()
	defer h.mu.Unlock()
	if svc, ok := h.regional[key]; ok {
		return svc
	}
	svc := finance.NewRegionalService(h.repos, governorateIDs)
	if len(h.regional) < maxRegionalServices {
		h.regional[key] = svc
	}
	return svc
}

func parseFilters(r *http.Request) domain.Filters {
	q := r.URL.Query()
	f := domain.Filters{
		ProviderID:    q.Get("provider_id"),
		GovernorateID: q.Get("governorate_id"),
		CityID:        q.Get("city_id"),
	}
	for _, s := range splitCSV(q.Get("status")) {
		f.Status = append(f.Status, domain.SettlementStatus(s))
	}
	for _, d := range splitCSV(q.Get("direction")) {
		f.Direction = append(f.Direction, money.Direction(d))
	}
	from, to := parseTime(q.Get("from")), parseTime(q.Get("to"))
	if from != nil && to != nil {
		f.DateRange = &domain.DateRange{Start: *from, End: *to}
	}
	return f
}

// --- ListFacts ---

func (h *Handlers) ListFacts(w http.ResponseWriter, r *http.Request) {
	facts := h.serviceFor(r).FinancialFacts(r.Context(), parseFilters(r))
	writeJSON(w, http.StatusOK, map[string]any{
		"facts": facts,
		"total": len(facts),
	})
}

// --- GetAdminSummary ---

func (h *Handlers) GetAdminSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.serviceFor(r).AdminSummary(r.Context(), parseFilters(r)))
}

// --- GetProviderSummary ---

func (h *Handlers) GetProviderSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "provider id is required")
		return
	}

	summary := finance.NewProviderService(h.repos, id).ProviderSummary(r.Context())
	if summary == nil {
		writeError(w, http.StatusNotFound, "no financial data for provider")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// --- GetRegionalSummary ---

func (h *Handlers) GetRegionalSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "governorateID")
	if id == "" {
		writeError(w, http.StatusBadRequest, "governorate id is required")
		return
	}
	writeJSON(w, http.StatusOK, h.serviceFor(r).RegionalSummary(r.Context(), id))
}

// --- ListSettlements ---

func (h *Handlers) ListSettlements(w http.ResponseWriter, r *http.Request) {
	settlements := h.serviceFor(r).Settlements(r.Context(), parseFilters(r))
	writeJSON(w, http.StatusOK, map[string]any{
		"settlements": settlements,
		"total":       len(settlements),
	})
}

// --- GetSettlement ---

func (h *Handlers) GetSettlement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	settlement := h.serviceFor(r).SettlementByID(r.Context(), id)
	if settlement == nil {
		writeError(w, http.StatusNotFound, "settlement not found")
		return
	}
	writeJSON(w, http.StatusOK, settlement)
}

// --- RecordPayment ---

func (h *Handlers) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payment domain.SettlementPayment
	if err := json.NewDecoder(r.Body).Decode(&payment); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment body: "+err.Error())
		return
	}
	payment.SettlementID = id

	if !h.serviceFor(r).RecordPayment(r.Context(), payment) {
		writeError(w, http.StatusUnprocessableEntity, "payment not accepted")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recorded": true})
}

// --- GetAuditLog ---

func (h *Handlers) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entries := h.serviceFor(r).AuditLog(r.Context(), id)
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"total":   len(entries),
	})
}

// --- ExportSettlementsCSV ---

func (h *Handlers) ExportSettlementsCSV(w http.ResponseWriter, r *http.Request) {
	settlements := h.serviceFor(r).Settlements(r.Context(), parseFilters(r))
	locale := parseLocale(r.URL.Query().Get("locale"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.CSVFilename(time.Now())+`"`)
	if err := export.WriteSettlementsCSV(w, settlements, locale); err != nil {
		log.Printf("[api] write csv: %v", err)
	}
}

// --- GetRegionalSummaries ---

func (h *Handlers) GetRegionalSummaries(w http.ResponseWriter, r *http.Request) {
	summaries := h.serviceFor(r).RegionalSummaries(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"summaries": summaries,
		"total":     len(summaries),
	})
}

// --- GetSettlementReport ---

func (h *Handlers) GetSettlementReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	svc := h.serviceFor(r)

	settlement := svc.SettlementByID(r.Context(), id)
	if settlement == nil {
		writeError(w, http.StatusNotFound, "settlement not found")
		return
	}

	opts := export.ReportOptions{
		Locale:          parseLocale(r.URL.Query().Get("locale")),
		GeneratedAt:     time.Now(),
		IncludeAuditLog: r.URL.Query().Get("include_audit") == "1",
	}
	data := export.ReportData{Settlement: *settlement}
	if opts.IncludeAuditLog {
		data.AuditLog = svc.AuditLog(r.Context(), id)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := export.RenderSettlementReport(w, data, opts); err != nil {
		log.Printf("[api] render settlement report: %v", err)
	}
}

// --- ExportSettlementsReport ---

func (h *Handlers) ExportSettlementsReport(w http.ResponseWriter, r *http.Request) {
	settlements := h.serviceFor(r).Settlements(r.Context(), parseFilters(r))
	opts := export.ReportOptions{
		Locale:      parseLocale(r.URL.Query().Get("locale")),
		GeneratedAt: time.Now(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := export.RenderSettlementsReport(w, settlements, opts); err != nil {
		log.Printf("[api] render report: %v", err)
	}
}
