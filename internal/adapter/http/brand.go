package httpadapter

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

type budgetView struct {
	Budget      decimal.Decimal `json:"budget"`
	Spend       decimal.Decimal `json:"spend"`
	Remaining   decimal.Decimal `json:"remaining"`
	Utilization float64         `json:"utilization_pct"`
}

type campaignCountsView struct {
	Total         int `json:"total"`
	Active        int `json:"active"`
	PausedBudget  int `json:"paused_budget"`
	PausedDaypart int `json:"paused_daypart"`
	Inactive      int `json:"inactive"`
}

type brandStatusResponse struct {
	BrandID   int64              `json:"brand_id"`
	Name      string             `json:"name"`
	Active    bool               `json:"active"`
	Timezone  string             `json:"timezone"`
	LocalTime time.Time          `json:"local_time"`
	Daily     budgetView         `json:"daily"`
	Monthly   budgetView         `json:"monthly"`
	Campaigns campaignCountsView `json:"campaigns"`
}

// handleBrandStatus returns the brand's budgets, today's utilization, the
// current time in its timezone and a campaign count per status.
func (h *Handler) handleBrandStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid brand id", http.StatusBadRequest)
		return
	}
	info, err := h.svc.GetBrandStatus(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, brandStatusResponse{
		BrandID:   info.BrandID,
		Name:      info.Name,
		Active:    info.Active,
		Timezone:  info.Timezone,
		LocalTime: info.LocalTime,
		Daily: budgetView{
			Budget:      info.DailyBudget,
			Spend:       info.DailySpend,
			Remaining:   info.DailyRemaining,
			Utilization: info.DailyUtilization,
		},
		Monthly: budgetView{
			Budget:      info.MonthlyBudget,
			Spend:       info.MonthlySpend,
			Remaining:   info.MonthlyRemaining,
			Utilization: info.MonthlyUtilization,
		},
		Campaigns: campaignCountsView{
			Total:         info.Campaigns.Total,
			Active:        info.Campaigns.Active,
			PausedBudget:  info.Campaigns.PausedBudget,
			PausedDaypart: info.Campaigns.PausedDaypart,
			Inactive:      info.Campaigns.Inactive,
		},
	})
}
