package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vaultview/vaultview/internal/export"
	"github.com/vaultview/vaultview/pkg/credentials"
	"github.com/vaultview/vaultview/pkg/devices"
	"github.com/vaultview/vaultview/pkg/logging"
	"github.com/vaultview/vaultview/pkg/portfolio"
)

// Handler exposes the aggregation layer as a JSON API. It serves already
// computed values; all rendering concerns live with the consumer.
type Handler struct {
	registry     *portfolio.Registry
	orchestrator *portfolio.Orchestrator
	fetcher      *devices.Fetcher
	metrics      *Metrics
	logger       *zerolog.Logger
	scrubber     logging.ScrubbingWriter
}

func NewHandler(
	registry *portfolio.Registry,
	orchestrator *portfolio.Orchestrator,
	fetcher *devices.Fetcher,
	metrics *Metrics,
	logger *zerolog.Logger,
	scrubber logging.ScrubbingWriter,
) *Handler {
	return &Handler{
		registry:     registry,
		orchestrator: orchestrator,
		fetcher:      fetcher,
		metrics:      metrics,
		logger:       logger,
		scrubber:     scrubber,
	}
}

// Router builds the chi router with all API routes mounted.
func (h *Handler) Router(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/session", h.handleStartSession)
		r.Delete("/session", h.handleDiscardSession)
		r.Get("/tenants", h.handleListTenants)
		r.Get("/tenants/{id}", h.handleGetTenant)
		r.Get("/portfolio", h.handleGetPortfolio)
		r.Get("/export.csv", h.handleExportCSV)
		r.Post("/devices", h.handleFetchDevices)
		r.Get("/devices", h.handleGetDevices)
		r.Delete("/devices", h.handleClearDevices)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

func (h *Handler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var set credentials.Set
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	set = set.Normalize()
	if err := set.Validate(); err != nil {
		// the whole submission is rejected, no partial session is created
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.scrubber != nil {
		for _, token := range set.Tokens() {
			h.scrubber.AddTerm(token)
		}
	}

	h.fetcher.ClearSelection()
	// the pipelines outlive this request; a request-scoped context would
	// cancel every in-flight tenant call the moment the response is written
	h.orchestrator.Initialize(context.WithoutCancel(r.Context()), set)
	h.metrics.SessionsStarted.Inc()
	h.logger.Info().Int("tenants", len(set)).Msg("session started")

	writeJSON(w, http.StatusAccepted, h.registry.Snapshot())
}

func (h *Handler) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	h.registry.Reset()
	h.fetcher.ClearSelection()
	h.metrics.SessionsDiscarded.Inc()
	h.logger.Info().Msg("session discarded")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListTenants(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Snapshot())
}

func (h *Handler) handleGetTenant(w http.ResponseWriter, r *http.Request) {
	record, ok := h.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown tenant id")
		return
	}

	if record.Data != nil {
		if sortConfig := sortConfigFromQuery(r); sortConfig.Key != "" {
			sorted := *record.Data
			sorted.Users.Members = portfolio.SortMembers(record.Data.Users.Members, sortConfig)
			record.Data = &sorted
		}
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	snapshot := h.registry.Snapshot()
	sorted := portfolio.SortTenants(portfolio.Loaded(snapshot), sortConfigFromQuery(r))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"summary": portfolio.Summarize(snapshot),
		"tenants": sorted,
	})
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="portfolio_data.csv"`)
	if err := export.WriteCSV(w, h.registry.Snapshot()); err != nil {
		h.logger.Error().Err(err).Msg("csv export failed")
	}
}

func (h *Handler) handleFetchDevices(w http.ResponseWriter, r *http.Request) {
	var request struct {
		TenantID string `json:"tenantId"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, ok := h.registry.Get(request.TenantID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown tenant id")
		return
	}

	deviceList, err := h.fetcher.Fetch(r.Context(), record.ID, record.Token, request.Email)
	if err != nil {
		h.metrics.DeviceLookups.WithLabelValues("error").Inc()
		// transient, dismissible notice; tenant status stays untouched
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.metrics.DeviceLookups.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{"devices": deviceList})
}

func (h *Handler) handleGetDevices(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"devices": h.fetcher.Devices(),
		"notice":  h.fetcher.Notice(),
	}
	if selection, ok := h.fetcher.ActiveSelection(); ok {
		response["selection"] = selection
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) handleClearDevices(w http.ResponseWriter, r *http.Request) {
	h.fetcher.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

func sortConfigFromQuery(r *http.Request) portfolio.SortConfig {
	direction := portfolio.Ascending
	if r.URL.Query().Get("direction") == string(portfolio.Descending) {
		direction = portfolio.Descending
	}
	return portfolio.SortConfig{
		Key:       r.URL.Query().Get("sortBy"),
		Direction: direction,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
