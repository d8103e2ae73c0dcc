package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"adbudget/internal/core/port"
)

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP. It holds the usecase to execute business logic and a logger for
// structured logging. Routes are registered on a chi.Router for convenient
// method handling.
type Handler struct {
	svc    port.BudgetUseCase
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured. It accepts the
// usecase implementation and a logger; exposeMetrics additionally mounts
// the Prometheus handler on /metrics.
func NewHandler(svc port.BudgetUseCase, logger *slog.Logger, exposeMetrics bool) *Handler {
	h := &Handler{svc: svc, logger: logger}
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/spend", h.handleRecordSpend)

		r.Route("/campaigns/{id}", func(r chi.Router) {
			r.Get("/status", h.handleCampaignStatus)
			r.Post("/toggle", h.handleCampaignToggle)
			r.Get("/changes", h.handleCampaignChanges)
		})
		r.Get("/brands/{id}/status", h.handleBrandStatus)

		r.Route("/sweeps", func(r chi.Router) {
			r.Post("/dayparting", h.handleDaypartingSweep)
			r.Post("/budget", h.handleBudgetSweep)
			r.Post("/reset-daily", h.handleResetDaily)
			r.Post("/reset-monthly", h.handleResetMonthly)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/brands", h.handleCreateBrand)
			r.Post("/campaigns", h.handleCreateCampaign)
			r.Post("/schedules", h.handleCreateSchedule)
		})
	})
	r.Get("/health", h.handleHealth)
	if exposeMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v with the given status. Encoding failures are logged;
// by then the status line is already on the wire.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

// writeError maps usecase errors onto HTTP status codes. Validation
// problems and missing entities carry their message to the client;
// anything unexpected is logged and reported as a bare 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, port.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, port.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, port.ErrInactiveEntity), errors.Is(err, port.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, port.ErrStoreUnavailable):
		h.logger.Error("store unavailable", slog.Any("error", err))
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
	default:
		h.logger.Error("internal error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// idParam parses the {id} path parameter bound by the router.
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
