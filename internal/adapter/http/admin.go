package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"adbudget/internal/core/domain"
	"adbudget/internal/core/port"
)

type createBrandRequest struct {
	Name          string          `json:"name"`
	DailyBudget   decimal.Decimal `json:"daily_budget"`
	MonthlyBudget decimal.Decimal `json:"monthly_budget"`
	Timezone      string          `json:"timezone"`
}

type brandView struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	DailyBudget   decimal.Decimal `json:"daily_budget"`
	MonthlyBudget decimal.Decimal `json:"monthly_budget"`
	Timezone      string          `json:"timezone"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// handleCreateBrand registers a new brand. Budgets accept JSON numbers or
// strings; an empty timezone defaults to UTC.
func (h *Handler) handleCreateBrand(w http.ResponseWriter, r *http.Request) {
	var req createBrandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	b, err := h.svc.CreateBrand(r.Context(), port.CreateBrandReq{
		Name:          req.Name,
		DailyBudget:   req.DailyBudget,
		MonthlyBudget: req.MonthlyBudget,
		Timezone:      req.Timezone,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, brandView{
		ID:            b.ID,
		Name:          b.Name,
		DailyBudget:   b.DailyBudget,
		MonthlyBudget: b.MonthlyBudget,
		Timezone:      b.Timezone,
		Active:        b.Active,
		CreatedAt:     b.CreatedAt,
	})
}

type createCampaignRequest struct {
	BrandID int64  `json:"brand_id"`
	Name    string `json:"name"`
}

type campaignView struct {
	ID            int64         `json:"id"`
	BrandID       int64         `json:"brand_id"`
	Name          string        `json:"name"`
	Status        domain.Status `json:"status"`
	ManualEnabled bool          `json:"manual_enabled"`
	CreatedAt     time.Time     `json:"created_at"`
}

// handleCreateCampaign registers a new campaign under a brand. Campaigns
// start INACTIVE; a toggle with enabled=true starts delivery.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	c, err := h.svc.CreateCampaign(r.Context(), port.CreateCampaignReq{
		BrandID: req.BrandID,
		Name:    req.Name,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, campaignView{
		ID:            c.ID,
		BrandID:       c.BrandID,
		Name:          c.Name,
		Status:        c.Status,
		ManualEnabled: c.ManualEnabled,
		CreatedAt:     c.CreatedAt,
	})
}

type createScheduleRequest struct {
	CampaignID int64 `json:"campaign_id"`
	DayOfWeek  int   `json:"day_of_week"`
	StartHour  int   `json:"start_hour"`
	EndHour    int   `json:"end_hour"`
}

type scheduleCreatedView struct {
	ID         int64 `json:"id"`
	CampaignID int64 `json:"campaign_id"`
	DayOfWeek  int   `json:"day_of_week"`
	StartHour  int   `json:"start_hour"`
	EndHour    int   `json:"end_hour"`
	Active     bool  `json:"active"`
}

// handleCreateSchedule adds a dayparting window to a campaign. Days use
// 0 = Monday through 6 = Sunday; hours are inclusive, 0 through 23.
func (h *Handler) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	s, err := h.svc.CreateSchedule(r.Context(), port.CreateScheduleReq{
		CampaignID: req.CampaignID,
		DayOfWeek:  req.DayOfWeek,
		StartHour:  req.StartHour,
		EndHour:    req.EndHour,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, scheduleCreatedView{
		ID:         s.ID,
		CampaignID: s.CampaignID,
		DayOfWeek:  s.DayOfWeek,
		StartHour:  s.StartHour,
		EndHour:    s.EndHour,
		Active:     s.Active,
	})
}
