package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"adbudget/internal/core/domain"
)

// BudgetUseCase defines the business operations exposed by the budget
// engine. This interface represents the primary port into the application
// domain: HTTP handlers and the job scheduler both drive it.
type BudgetUseCase interface {
	// RecordSpend appends a spend event to the ledger and updates the
	// brand's running totals. When the spend exhausts the daily or monthly
	// budget, every campaign of the brand is re-evaluated immediately so
	// siblings sharing the budget stop delivering too.
	RecordSpend(ctx context.Context, campaignID int64, amount decimal.Decimal, occurredAt time.Time) (*SpendResult, error)

	// GetCampaignStatus returns the campaign's current state together with
	// the live budget and dayparting signals.
	GetCampaignStatus(ctx context.Context, campaignID int64) (*CampaignStatusInfo, error)
	// SetManualEnabled flips the operator kill switch. Disabling forces the
	// campaign INACTIVE; enabling re-evaluates both signals immediately, so
	// the campaign may come back as ACTIVE or as either paused state.
	SetManualEnabled(ctx context.Context, campaignID int64, enabled bool) (*CampaignStatusInfo, error)
	// ListStatusChanges returns the campaign's newest audit records.
	ListStatusChanges(ctx context.Context, campaignID int64, limit int) ([]domain.StatusChange, error)
	// GetBrandStatus returns budget utilization and campaign counts for one
	// brand.
	GetBrandStatus(ctx context.Context, brandID int64) (*BrandStatusInfo, error)

	// DaypartingSweep re-evaluates every campaign that has at least one
	// dayparting window against the current instant. It returns how many
	// transitions were applied.
	DaypartingSweep(ctx context.Context) (int, error)
	// BudgetSweep re-evaluates every campaign of every active brand against
	// both signals. It returns how many transitions were applied.
	BudgetSweep(ctx context.Context) (int, error)
	// ResetDaily rebuilds each active brand's summary for asOf's date from
	// the ledger and re-evaluates its campaigns. Running it twice for the
	// same boundary is harmless; spend recorded after the boundary stays
	// counted.
	ResetDaily(ctx context.Context, asOf time.Time) (int, error)
	// ResetMonthly does the same at a month boundary.
	ResetMonthly(ctx context.Context, asOf time.Time) (int, error)
	// CleanupSpendRecords deletes ledger records older than the retention
	// window and reports how many rows were removed.
	CleanupSpendRecords(ctx context.Context, retentionDays int) (int64, error)

	// CreateBrand validates and stores a new brand.
	CreateBrand(ctx context.Context, req CreateBrandReq) (*domain.Brand, error)
	// CreateCampaign validates and stores a new campaign. New campaigns
	// start INACTIVE with the kill switch on; an explicit enable starts
	// delivery.
	CreateCampaign(ctx context.Context, req CreateCampaignReq) (*domain.Campaign, error)
	// CreateSchedule validates and stores a new dayparting window.
	CreateSchedule(ctx context.Context, req CreateScheduleReq) (*domain.DaypartingSchedule, error)
}

// SpendResult is returned to spend reporters. Remaining values may be
// negative when the accepted record overshot the budget.
type SpendResult struct {
	Token            string
	BrandID          int64
	CampaignID       int64
	Amount           decimal.Decimal
	DailyRemaining   decimal.Decimal
	MonthlyRemaining decimal.Decimal
	CampaignStatus   domain.Status
}

// CampaignStatusInfo is the full status view of one campaign.
type CampaignStatusInfo struct {
	CampaignID       int64
	Name             string
	BrandID          int64
	Status           domain.Status
	ManualEnabled    bool
	WithinDayparting bool
	CanRunNow        bool
	DailyRemaining   decimal.Decimal
	MonthlyRemaining decimal.Decimal
	Schedules        []domain.DaypartingSchedule
}

// BrandStatusInfo aggregates a brand's budgets, utilization and campaign
// counts. LocalTime is the current time in the brand's timezone.
type BrandStatusInfo struct {
	BrandID            int64
	Name               string
	Active             bool
	Timezone           string
	LocalTime          time.Time
	DailyBudget        decimal.Decimal
	DailySpend         decimal.Decimal
	DailyRemaining     decimal.Decimal
	DailyUtilization   float64
	MonthlyBudget      decimal.Decimal
	MonthlySpend       decimal.Decimal
	MonthlyRemaining   decimal.Decimal
	MonthlyUtilization float64
	Campaigns          CampaignCounts
}

// CampaignCounts breaks a brand's campaigns down by status.
type CampaignCounts struct {
	Total         int
	Active        int
	PausedBudget  int
	PausedDaypart int
	Inactive      int
}

// CreateBrandReq carries the fields for a new brand. Timezone defaults to
// UTC when empty.
type CreateBrandReq struct {
	Name          string
	DailyBudget   decimal.Decimal
	MonthlyBudget decimal.Decimal
	Timezone      string
}

// CreateCampaignReq carries the fields for a new campaign.
type CreateCampaignReq struct {
	BrandID int64
	Name    string
}

// CreateScheduleReq carries the fields for a new dayparting window.
type CreateScheduleReq struct {
	CampaignID int64
	DayOfWeek  int
	StartHour  int
	EndHour    int
}
