package port

import (
	"context"
	"errors"
	"time"

	"adbudget/internal/core/domain"
)

var (
	// ErrValidation marks input the caller can fix: bad amounts, unknown
	// timezones, inverted hour windows.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInactiveEntity marks an operation against a deactivated brand or a
	// manually disabled campaign.
	ErrInactiveEntity = errors.New("entity is inactive")
	// ErrConflict marks a concurrent-update conflict that survived the
	// store's internal retries.
	ErrConflict = errors.New("concurrent update conflict")
	// ErrStoreUnavailable marks a transient store failure; callers may retry
	// the whole operation.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// BudgetRepository defines the persistence layer for the budget engine. It
// is an outbound port in hexagonal architecture. Implementations must be
// concurrency-safe: ApplySpend and RecomputeSummary serialize per brand so
// no concurrent spend increment is lost, and UpdateStatusAndRecordChange is
// an atomic compare-and-set on a single campaign row.
type BudgetRepository interface {
	// CreateBrand stores a new brand and fills its generated fields.
	CreateBrand(ctx context.Context, b *domain.Brand) error
	// GetBrand returns a brand by id, or nil when it does not exist.
	GetBrand(ctx context.Context, id int64) (*domain.Brand, error)
	// ListActiveBrandIDs returns up to limit active brand ids strictly
	// greater than afterID in ascending order. It is the cursor sweeps use
	// to walk all brands in bounded batches.
	ListActiveBrandIDs(ctx context.Context, afterID int64, limit int) ([]int64, error)

	// CreateCampaign stores a new campaign and fills its generated fields.
	CreateCampaign(ctx context.Context, c *domain.Campaign) error
	// GetCampaign returns a campaign by id, or nil when it does not exist.
	GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error)
	// ListBrandCampaigns returns all campaigns of a brand ordered by id.
	ListBrandCampaigns(ctx context.Context, brandID int64) ([]domain.Campaign, error)
	// SetCampaignManualEnabled flips the operator kill switch.
	SetCampaignManualEnabled(ctx context.Context, id int64, enabled bool) error
	// UpdateStatusAndRecordChange moves a campaign from one status to
	// another and appends the audit record in the same atomic step. It
	// returns false without error when the campaign is no longer in the
	// from status, so racing writers produce exactly one transition.
	UpdateStatusAndRecordChange(ctx context.Context, campaignID int64, from, to domain.Status, reason domain.Reason, at time.Time) (bool, error)
	// ListStatusChanges returns the newest audit records for a campaign.
	ListStatusChanges(ctx context.Context, campaignID int64, limit int) ([]domain.StatusChange, error)

	// CreateSchedule stores a new dayparting window.
	CreateSchedule(ctx context.Context, s *domain.DaypartingSchedule) error
	// ListCampaignSchedules returns all windows of a campaign, including
	// inactive ones.
	ListCampaignSchedules(ctx context.Context, campaignID int64) ([]domain.DaypartingSchedule, error)
	// ListSchedulesByBrand returns every window of the brand's campaigns
	// grouped by campaign id. Campaigns without windows have no key.
	ListSchedulesByBrand(ctx context.Context, brandID int64) (map[int64][]domain.DaypartingSchedule, error)

	// ApplySpend appends a ledger record and atomically folds its amount
	// into the brand's summary for the record's spend date, creating the
	// row with month-to-date carryover when absent. Monthly totals of rows
	// for later dates in the same month are adjusted too, so a late event
	// keeps every row consistent with the ledger. It returns the summary
	// after the increment.
	ApplySpend(ctx context.Context, rec *domain.SpendRecord) (*domain.BudgetSummary, error)
	// GetSummary returns the summary row for a brand and date, or nil when
	// no spend has been recorded for that date.
	GetSummary(ctx context.Context, brandID int64, date time.Time) (*domain.BudgetSummary, error)
	// RecomputeSummary rebuilds the summary row for a brand and date from
	// the ledger: daily spend from records on the date, monthly spend from
	// records between the first of the month and the date. The result
	// overwrites whatever the row held.
	RecomputeSummary(ctx context.Context, brandID int64, date time.Time) (*domain.BudgetSummary, error)
	// DeleteSpendRecordsBefore removes ledger records with a spend date
	// before the cutoff and reports how many were deleted.
	DeleteSpendRecordsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
