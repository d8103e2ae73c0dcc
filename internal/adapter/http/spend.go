package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"adbudget/internal/core/domain"
)

type recordSpendRequest struct {
	CampaignID int64           `json:"campaign_id"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt *time.Time      `json:"occurred_at"`
}

type recordSpendResponse struct {
	Token            string          `json:"token"`
	BrandID          int64           `json:"brand_id"`
	CampaignID       int64           `json:"campaign_id"`
	Amount           decimal.Decimal `json:"amount"`
	DailyRemaining   decimal.Decimal `json:"daily_remaining"`
	MonthlyRemaining decimal.Decimal `json:"monthly_remaining"`
	CampaignStatus   domain.Status   `json:"campaign_status"`
}

// handleRecordSpend ingests one spend event. The body carries the campaign
// id, a positive decimal amount and an optional occurred_at timestamp
// (RFC3339); a missing timestamp means now. The response echoes the ledger
// token and the brand's remaining budgets after the increment, which lets
// delivery systems throttle without an extra status call. Parsing errors
// produce HTTP 400; spend against a disabled campaign or deactivated
// brand produces HTTP 409.
func (h *Handler) handleRecordSpend(w http.ResponseWriter, r *http.Request) {
	var req recordSpendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	var occurredAt time.Time
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}
	res, err := h.svc.RecordSpend(r.Context(), req.CampaignID, req.Amount, occurredAt)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, recordSpendResponse{
		Token:            res.Token,
		BrandID:          res.BrandID,
		CampaignID:       res.CampaignID,
		Amount:           res.Amount,
		DailyRemaining:   res.DailyRemaining,
		MonthlyRemaining: res.MonthlyRemaining,
		CampaignStatus:   res.CampaignStatus,
	})
}
