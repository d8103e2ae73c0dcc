package httpadapter

import (
	"net/http"
	"time"
)

type sweepResponse struct {
	Transitions int `json:"transitions"`
}

// The sweep endpoints trigger the same reconciliation passes the scheduler
// runs periodically. They exist for operators: after fixing bad data or
// restoring a backup, a manual pass beats waiting for the next tick.

func (h *Handler) handleDaypartingSweep(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.DaypartingSweep(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sweepResponse{Transitions: n})
}

func (h *Handler) handleBudgetSweep(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.BudgetSweep(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sweepResponse{Transitions: n})
}

// handleResetDaily rebuilds summaries for the given date (query parameter
// as_of, formatted 2006-01-02, defaulting to today) and re-evaluates
// campaigns. Safe to call repeatedly for the same date.
func (h *Handler) handleResetDaily(w http.ResponseWriter, r *http.Request) {
	asOf, ok := parseAsOf(w, r)
	if !ok {
		return
	}
	n, err := h.svc.ResetDaily(r.Context(), asOf)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sweepResponse{Transitions: n})
}

func (h *Handler) handleResetMonthly(w http.ResponseWriter, r *http.Request) {
	asOf, ok := parseAsOf(w, r)
	if !ok {
		return
	}
	n, err := h.svc.ResetMonthly(r.Context(), asOf)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sweepResponse{Transitions: n})
}

func parseAsOf(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	s := r.URL.Query().Get("as_of")
	if s == "" {
		return time.Time{}, true
	}
	asOf, err := time.Parse("2006-01-02", s)
	if err != nil {
		http.Error(w, "invalid as_of date, want YYYY-MM-DD", http.StatusBadRequest)
		return time.Time{}, false
	}
	return asOf, true
}
