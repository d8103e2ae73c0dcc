package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"adbudget/internal/core/domain"
	"adbudget/internal/core/port"
)

type scheduleView struct {
	DayOfWeek int `json:"day_of_week"`
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

type campaignStatusResponse struct {
	CampaignID       int64           `json:"campaign_id"`
	Name             string          `json:"name"`
	BrandID          int64           `json:"brand_id"`
	Status           domain.Status   `json:"status"`
	ManualEnabled    bool            `json:"manual_enabled"`
	WithinDayparting bool            `json:"within_dayparting"`
	CanRunNow        bool            `json:"can_run_now"`
	DailyRemaining   decimal.Decimal `json:"daily_remaining"`
	MonthlyRemaining decimal.Decimal `json:"monthly_remaining"`
	Schedules        []scheduleView  `json:"schedules"`
}

func campaignStatusView(info *port.CampaignStatusInfo) campaignStatusResponse {
	views := make([]scheduleView, 0, len(info.Schedules))
	for _, s := range info.Schedules {
		views = append(views, scheduleView{DayOfWeek: s.DayOfWeek, StartHour: s.StartHour, EndHour: s.EndHour})
	}
	return campaignStatusResponse{
		CampaignID:       info.CampaignID,
		Name:             info.Name,
		BrandID:          info.BrandID,
		Status:           info.Status,
		ManualEnabled:    info.ManualEnabled,
		WithinDayparting: info.WithinDayparting,
		CanRunNow:        info.CanRunNow,
		DailyRemaining:   info.DailyRemaining,
		MonthlyRemaining: info.MonthlyRemaining,
		Schedules:        views,
	}
}

// handleCampaignStatus returns the campaign's stored status together with
// the live budget and dayparting signals and its active windows.
func (h *Handler) handleCampaignStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	info, err := h.svc.GetCampaignStatus(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, campaignStatusView(info))
}

type toggleRequest struct {
	Enabled *bool `json:"enabled"`
}

// handleCampaignToggle flips the operator kill switch. The body must carry
// an explicit {"enabled": true|false}; the response is the campaign's
// status after the immediate re-evaluation.
func (h *Handler) handleCampaignToggle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Enabled == nil {
		http.Error(w, "enabled is required", http.StatusBadRequest)
		return
	}
	info, err := h.svc.SetManualEnabled(r.Context(), id, *req.Enabled)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, campaignStatusView(info))
}

type statusChangeView struct {
	From       domain.Status `json:"from"`
	To         domain.Status `json:"to"`
	Reason     domain.Reason `json:"reason"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// handleCampaignChanges returns the campaign's newest audit records. An
// optional `limit` query parameter caps the page size.
func (h *Handler) handleCampaignChanges(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
	}
	changes, err := h.svc.ListStatusChanges(r.Context(), id, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	views := make([]statusChangeView, 0, len(changes))
	for _, c := range changes {
		views = append(views, statusChangeView{From: c.From, To: c.To, Reason: c.Reason, OccurredAt: c.OccurredAt})
	}
	h.writeJSON(w, http.StatusOK, views)
}
