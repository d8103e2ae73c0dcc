package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"adbudget/internal/core/domain"
	"adbudget/internal/core/port"
)

const (
	defaultBrandBatchSize   = 100
	defaultSweepParallelism = 8
	defaultRetentionDays    = 90
	defaultChangesLimit     = 50
	maxChangesLimit         = 500
)

// BudgetUseCase implements the reconciliation logic of the budget engine.
// It orchestrates the ledger, the summary cache and the campaign status
// rules behind the port.BudgetUseCase interface. Sweeps fan out across
// brands but stay sequential within one brand, so two workers never
// reconcile the same brand's campaigns at once.
type BudgetUseCase struct {
	repo port.BudgetRepository
	log  *slog.Logger

	// brandBatchSize bounds each page of the brand cursor during sweeps.
	brandBatchSize int
	// sweepParallelism caps how many brands are reconciled concurrently.
	sweepParallelism int

	// now is the clock; tests swap it to pin the evaluated instant.
	now func() time.Time
}

// NewBudgetUseCase creates a new usecase with the provided repository.
func NewBudgetUseCase(repo port.BudgetRepository, log *slog.Logger) *BudgetUseCase {
	return &BudgetUseCase{
		repo:             repo,
		log:              log,
		brandBatchSize:   defaultBrandBatchSize,
		sweepParallelism: defaultSweepParallelism,
		now:              time.Now,
	}
}

// RecordSpend validates the reporter's input, appends the ledger record and
// folds it into the brand's summary. The record is accepted for paused
// campaigns too: delivery systems report spend with a delay, and dropping
// late events would understate the totals. Only a disabled campaign or a
// deactivated brand rejects spend. When the increment exhausts either
// budget, every campaign of the brand is re-evaluated before returning.
func (u *BudgetUseCase) RecordSpend(ctx context.Context, campaignID int64, amount decimal.Decimal, occurredAt time.Time) (*port.SpendResult, error) {
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: spend amount must be positive, got %s", port.ErrValidation, amount)
	}
	camp, err := u.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if camp == nil {
		return nil, fmt.Errorf("%w: campaign %d", port.ErrNotFound, campaignID)
	}
	if !camp.ManualEnabled {
		return nil, fmt.Errorf("%w: campaign %d is disabled", port.ErrInactiveEntity, campaignID)
	}
	brand, err := u.repo.GetBrand(ctx, camp.BrandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, fmt.Errorf("%w: brand %d", port.ErrNotFound, camp.BrandID)
	}
	if !brand.Active {
		return nil, fmt.Errorf("%w: brand %d is deactivated", port.ErrInactiveEntity, brand.ID)
	}

	now := u.now()
	if occurredAt.IsZero() {
		occurredAt = now
	}
	rec := &domain.SpendRecord{
		Token:      uuid.NewString(),
		BrandID:    brand.ID,
		CampaignID: camp.ID,
		Amount:     amount,
		SpendDate:  domain.DateOf(occurredAt),
		OccurredAt: occurredAt,
		RecordedAt: now,
	}
	summary, err := u.repo.ApplySpend(ctx, rec)
	if err != nil {
		return nil, err
	}

	status := camp.Status
	if !summary.HasBudget() {
		// The ledger entry is already committed, so a failure here must not
		// bubble up: the caller would re-send the spend and double-count it.
		// The periodic budget sweep repairs any campaign left running.
		if err := u.reconcileAfterSpend(ctx, brand, rec, summary, now); err != nil {
			u.log.Error("post-spend reconciliation failed",
				slog.Int64("brand_id", brand.ID), slog.Any("error", err))
		}
		if fresh, err := u.repo.GetCampaign(ctx, campaignID); err == nil && fresh != nil {
			status = fresh.Status
		}
	}
	return &port.SpendResult{
		Token:            rec.Token,
		BrandID:          brand.ID,
		CampaignID:       camp.ID,
		Amount:           amount,
		DailyRemaining:   summary.DailyRemaining,
		MonthlyRemaining: summary.MonthlyRemaining,
		CampaignStatus:   status,
	}, nil
}

// reconcileAfterSpend re-evaluates the brand's campaigns once a spend
// exhausted the budget of its date. A late event lands on an older date;
// campaigns are still judged by the current date's totals, which the
// applied record reached through the monthly carryover.
func (u *BudgetUseCase) reconcileAfterSpend(ctx context.Context, brand *domain.Brand, rec *domain.SpendRecord, summary *domain.BudgetSummary, now time.Time) error {
	if !rec.SpendDate.Equal(domain.DateOf(now)) {
		var err error
		if summary, err = u.currentSummary(ctx, brand.ID, domain.DateOf(now)); err != nil {
			return err
		}
	}
	_, err := u.reconcileBrand(ctx, brand, summary, now, false)
	return err
}

// GetCampaignStatus returns the campaign's stored status together with a
// fresh evaluation of both signals.
func (u *BudgetUseCase) GetCampaignStatus(ctx context.Context, campaignID int64) (*port.CampaignStatusInfo, error) {
	camp, err := u.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if camp == nil {
		return nil, fmt.Errorf("%w: campaign %d", port.ErrNotFound, campaignID)
	}
	brand, err := u.repo.GetBrand(ctx, camp.BrandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, fmt.Errorf("%w: brand %d", port.ErrNotFound, camp.BrandID)
	}
	loc, err := brand.Location()
	if err != nil {
		return nil, fmt.Errorf("brand %d timezone %q: %w", brand.ID, brand.Timezone, err)
	}
	schedules, err := u.repo.ListCampaignSchedules(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	now := u.now()
	summary, err := u.repo.GetSummary(ctx, brand.ID, domain.DateOf(now))
	if err != nil {
		return nil, err
	}
	daily, monthly := remainingBudget(brand, summary)
	budgetOK := brandBudgetOK(brand, summary)
	within := domain.ScheduleAllows(schedules, now, loc)

	return &port.CampaignStatusInfo{
		CampaignID:       camp.ID,
		Name:             camp.Name,
		BrandID:          brand.ID,
		Status:           camp.Status,
		ManualEnabled:    camp.ManualEnabled,
		WithinDayparting: within,
		CanRunNow:        camp.ManualEnabled && brand.Active && budgetOK && within,
		DailyRemaining:   daily,
		MonthlyRemaining: monthly,
		Schedules:        activeSchedules(schedules),
	}, nil
}

// SetManualEnabled flips the kill switch and applies the matching
// transition. Disabling always lands on INACTIVE. Enabling evaluates both
// signals at the current instant, so a campaign enabled outside its window
// or with an exhausted budget comes back paused, not active.
func (u *BudgetUseCase) SetManualEnabled(ctx context.Context, campaignID int64, enabled bool) (*port.CampaignStatusInfo, error) {
	camp, err := u.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if camp == nil {
		return nil, fmt.Errorf("%w: campaign %d", port.ErrNotFound, campaignID)
	}
	if camp.ManualEnabled != enabled {
		if err := u.repo.SetCampaignManualEnabled(ctx, campaignID, enabled); err != nil {
			return nil, err
		}
	}

	at := u.now()
	if !enabled {
		if err := u.forceInactive(ctx, camp, at); err != nil {
			return nil, err
		}
		return u.GetCampaignStatus(ctx, campaignID)
	}

	brand, err := u.repo.GetBrand(ctx, camp.BrandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, fmt.Errorf("%w: brand %d", port.ErrNotFound, camp.BrandID)
	}
	loc, err := brand.Location()
	if err != nil {
		return nil, fmt.Errorf("brand %d timezone %q: %w", brand.ID, brand.Timezone, err)
	}
	summary, err := u.currentSummary(ctx, brand.ID, domain.DateOf(at))
	if err != nil {
		return nil, err
	}
	schedules, err := u.repo.ListCampaignSchedules(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	budgetOK := brandBudgetOK(brand, summary)
	daypartOK := domain.ScheduleAllows(schedules, at, loc)
	// An enabled campaign gets the status the automatic rules would assign
	// to a running one.
	next := domain.NextStatus(domain.StatusActive, budgetOK, daypartOK)
	if next != camp.Status {
		if _, err := u.repo.UpdateStatusAndRecordChange(ctx, campaignID, camp.Status, next,
			domain.TransitionReason(camp.Status, next), at); err != nil {
			return nil, err
		}
	}
	return u.GetCampaignStatus(ctx, campaignID)
}

// forceInactive drives a campaign to INACTIVE, retrying the compare-and-set
// when a concurrent sweep moves the status underneath us.
func (u *BudgetUseCase) forceInactive(ctx context.Context, camp *domain.Campaign, at time.Time) error {
	current := camp.Status
	for attempt := 0; attempt < 3; attempt++ {
		if current == domain.StatusInactive {
			return nil
		}
		applied, err := u.repo.UpdateStatusAndRecordChange(ctx, camp.ID, current,
			domain.StatusInactive, domain.ReasonManualDisable, at)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
		fresh, err := u.repo.GetCampaign(ctx, camp.ID)
		if err != nil {
			return err
		}
		if fresh == nil {
			return fmt.Errorf("%w: campaign %d", port.ErrNotFound, camp.ID)
		}
		current = fresh.Status
	}
	return fmt.Errorf("%w: campaign %d kept changing status", port.ErrConflict, camp.ID)
}

// ListStatusChanges returns the campaign's newest audit records.
func (u *BudgetUseCase) ListStatusChanges(ctx context.Context, campaignID int64, limit int) ([]domain.StatusChange, error) {
	camp, err := u.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if camp == nil {
		return nil, fmt.Errorf("%w: campaign %d", port.ErrNotFound, campaignID)
	}
	if limit <= 0 {
		limit = defaultChangesLimit
	}
	if limit > maxChangesLimit {
		limit = maxChangesLimit
	}
	return u.repo.ListStatusChanges(ctx, campaignID, limit)
}

// GetBrandStatus returns budgets, utilization and campaign counts for one
// brand.
func (u *BudgetUseCase) GetBrandStatus(ctx context.Context, brandID int64) (*port.BrandStatusInfo, error) {
	brand, err := u.repo.GetBrand(ctx, brandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, fmt.Errorf("%w: brand %d", port.ErrNotFound, brandID)
	}
	loc, err := brand.Location()
	if err != nil {
		return nil, fmt.Errorf("brand %d timezone %q: %w", brand.ID, brand.Timezone, err)
	}
	now := u.now()
	summary, err := u.repo.GetSummary(ctx, brandID, domain.DateOf(now))
	if err != nil {
		return nil, err
	}
	camps, err := u.repo.ListBrandCampaigns(ctx, brandID)
	if err != nil {
		return nil, err
	}

	dailySpend, monthlySpend := decimal.Zero, decimal.Zero
	if summary != nil {
		dailySpend, monthlySpend = summary.DailySpend, summary.MonthlySpend
	}
	dailyRem, monthlyRem := remainingBudget(brand, summary)

	counts := port.CampaignCounts{Total: len(camps)}
	for i := range camps {
		switch camps[i].Status {
		case domain.StatusActive:
			counts.Active++
		case domain.StatusPausedBudget:
			counts.PausedBudget++
		case domain.StatusPausedDaypart:
			counts.PausedDaypart++
		case domain.StatusInactive:
			counts.Inactive++
		}
	}

	return &port.BrandStatusInfo{
		BrandID:            brand.ID,
		Name:               brand.Name,
		Active:             brand.Active,
		Timezone:           brand.Timezone,
		LocalTime:          now.In(loc),
		DailyBudget:        brand.DailyBudget,
		DailySpend:         dailySpend,
		DailyRemaining:     dailyRem,
		DailyUtilization:   utilization(dailySpend, brand.DailyBudget),
		MonthlyBudget:      brand.MonthlyBudget,
		MonthlySpend:       monthlySpend,
		MonthlyRemaining:   monthlyRem,
		MonthlyUtilization: utilization(monthlySpend, brand.MonthlyBudget),
		Campaigns:          counts,
	}, nil
}

// DaypartingSweep re-evaluates every campaign that has at least one
// dayparting window. Both signals feed the evaluation: a campaign inside
// its window but out of budget must land on PAUSED_BUDGET, not ACTIVE.
func (u *BudgetUseCase) DaypartingSweep(ctx context.Context) (int, error) {
	return u.sweepBrands(ctx, "dayparting", func(ctx context.Context, brandID int64, at time.Time) (int, error) {
		return u.sweepBrand(ctx, brandID, at, true)
	})
}

// BudgetSweep re-evaluates every campaign of every active brand against
// both signals. It is the safety net that repairs any state a crashed
// writer left behind.
func (u *BudgetUseCase) BudgetSweep(ctx context.Context) (int, error) {
	return u.sweepBrands(ctx, "budget", func(ctx context.Context, brandID int64, at time.Time) (int, error) {
		return u.sweepBrand(ctx, brandID, at, false)
	})
}

// ResetDaily rebuilds each brand's summary for asOf's date from the ledger
// and re-evaluates campaigns against the restored budget. Recomputing
// instead of zeroing makes repeated delivery of the same trigger harmless
// and keeps spend recorded after the boundary counted.
func (u *BudgetUseCase) ResetDaily(ctx context.Context, asOf time.Time) (int, error) {
	return u.resetSweep(ctx, "daily reset", asOf)
}

// ResetMonthly does the same at the month boundary. On the first of the
// month the recomputed month-to-date total only covers the new month, which
// restores the full monthly budget.
func (u *BudgetUseCase) ResetMonthly(ctx context.Context, asOf time.Time) (int, error) {
	return u.resetSweep(ctx, "monthly reset", asOf)
}

func (u *BudgetUseCase) resetSweep(ctx context.Context, name string, asOf time.Time) (int, error) {
	if asOf.IsZero() {
		asOf = u.now()
	}
	date := domain.DateOf(asOf)
	return u.sweepBrands(ctx, name, func(ctx context.Context, brandID int64, at time.Time) (int, error) {
		return u.resetBrand(ctx, brandID, date, at)
	})
}

// CleanupSpendRecords trims the ledger to the retention window. Summary
// rows are untouched: they are tiny and keep historical reporting alive
// after the raw records are gone.
func (u *BudgetUseCase) CleanupSpendRecords(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	cutoff := domain.DateOf(u.now().AddDate(0, 0, -retentionDays))
	deleted, err := u.repo.DeleteSpendRecordsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		u.log.Info("spend records trimmed",
			slog.Int64("deleted", deleted), slog.Time("cutoff", cutoff))
	}
	return deleted, nil
}

// CreateBrand validates and stores a new brand. A zero budget is legal and
// keeps the brand's campaigns permanently paused for that period.
func (u *BudgetUseCase) CreateBrand(ctx context.Context, req port.CreateBrandReq) (*domain.Brand, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: brand name is required", port.ErrValidation)
	}
	if req.DailyBudget.Sign() < 0 || req.MonthlyBudget.Sign() < 0 {
		return nil, fmt.Errorf("%w: budgets must not be negative", port.ErrValidation)
	}
	tz := req.Timezone
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", port.ErrValidation, tz)
	}
	b := &domain.Brand{
		Name:          req.Name,
		DailyBudget:   req.DailyBudget,
		MonthlyBudget: req.MonthlyBudget,
		Timezone:      tz,
		Active:        true,
	}
	if err := u.repo.CreateBrand(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// CreateCampaign validates and stores a new campaign. Campaigns start
// INACTIVE with the kill switch on; an explicit enable starts delivery.
func (u *BudgetUseCase) CreateCampaign(ctx context.Context, req port.CreateCampaignReq) (*domain.Campaign, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: campaign name is required", port.ErrValidation)
	}
	brand, err := u.repo.GetBrand(ctx, req.BrandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, fmt.Errorf("%w: brand %d", port.ErrNotFound, req.BrandID)
	}
	c := &domain.Campaign{
		BrandID:       brand.ID,
		Name:          req.Name,
		Status:        domain.StatusInactive,
		ManualEnabled: true,
	}
	if err := u.repo.CreateCampaign(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateSchedule validates and stores a new dayparting window.
func (u *BudgetUseCase) CreateSchedule(ctx context.Context, req port.CreateScheduleReq) (*domain.DaypartingSchedule, error) {
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return nil, fmt.Errorf("%w: day_of_week must be 0 (Monday) through 6 (Sunday), got %d", port.ErrValidation, req.DayOfWeek)
	}
	if req.StartHour < 0 || req.StartHour > 23 || req.EndHour < 0 || req.EndHour > 23 {
		return nil, fmt.Errorf("%w: hours must be 0 through 23", port.ErrValidation)
	}
	if req.StartHour > req.EndHour {
		return nil, fmt.Errorf("%w: start_hour %d is after end_hour %d", port.ErrValidation, req.StartHour, req.EndHour)
	}
	camp, err := u.repo.GetCampaign(ctx, req.CampaignID)
	if err != nil {
		return nil, err
	}
	if camp == nil {
		return nil, fmt.Errorf("%w: campaign %d", port.ErrNotFound, req.CampaignID)
	}
	s := &domain.DaypartingSchedule{
		CampaignID: camp.ID,
		DayOfWeek:  req.DayOfWeek,
		StartHour:  req.StartHour,
		EndHour:    req.EndHour,
		Active:     true,
	}
	if err := u.repo.CreateSchedule(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// sweepBrands walks all active brands with a bounded cursor and fans the
// per-brand work out to a bounded worker group. A failing brand is logged
// and skipped so one bad row never stalls the rest; the aggregate error
// tells the scheduler the run needs another pass.
func (u *BudgetUseCase) sweepBrands(ctx context.Context, name string, fn func(ctx context.Context, brandID int64, at time.Time) (int, error)) (int, error) {
	at := u.now()
	var applied, failed atomic.Int64
	afterID := int64(0)
	for {
		ids, err := u.repo.ListActiveBrandIDs(ctx, afterID, u.brandBatchSize)
		if err != nil {
			return int(applied.Load()), err
		}
		if len(ids) == 0 {
			break
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(u.sweepParallelism)
		for _, id := range ids {
			id := id
			g.Go(func() error {
				n, err := fn(gctx, id, at)
				if err != nil {
					failed.Add(1)
					u.log.Error("sweep: brand failed",
						slog.String("sweep", name), slog.Int64("brand_id", id), slog.Any("error", err))
					return nil
				}
				applied.Add(int64(n))
				return nil
			})
		}
		_ = g.Wait()
		if err := ctx.Err(); err != nil {
			return int(applied.Load()), err
		}
		afterID = ids[len(ids)-1]
	}
	if n := failed.Load(); n > 0 {
		return int(applied.Load()), fmt.Errorf("%s sweep: %d brand(s) failed", name, n)
	}
	return int(applied.Load()), nil
}

func (u *BudgetUseCase) sweepBrand(ctx context.Context, brandID int64, at time.Time, onlyScheduled bool) (int, error) {
	brand, err := u.repo.GetBrand(ctx, brandID)
	if err != nil {
		return 0, err
	}
	if brand == nil || !brand.Active {
		return 0, nil
	}
	summary, err := u.currentSummary(ctx, brandID, domain.DateOf(at))
	if err != nil {
		return 0, err
	}
	return u.reconcileBrand(ctx, brand, summary, at, onlyScheduled)
}

func (u *BudgetUseCase) resetBrand(ctx context.Context, brandID int64, date, at time.Time) (int, error) {
	brand, err := u.repo.GetBrand(ctx, brandID)
	if err != nil {
		return 0, err
	}
	if brand == nil || !brand.Active {
		return 0, nil
	}
	summary, err := u.repo.RecomputeSummary(ctx, brandID, date)
	if err != nil {
		return 0, err
	}
	return u.reconcileBrand(ctx, brand, summary, at, false)
}

// reconcileBrand applies the status rules to the brand's campaigns.
// Campaigns are processed in id order, one at a time; cross-brand
// parallelism lives in sweepBrands.
func (u *BudgetUseCase) reconcileBrand(ctx context.Context, brand *domain.Brand, summary *domain.BudgetSummary, at time.Time, onlyScheduled bool) (int, error) {
	loc, err := brand.Location()
	if err != nil {
		return 0, fmt.Errorf("brand %d timezone %q: %w", brand.ID, brand.Timezone, err)
	}
	camps, err := u.repo.ListBrandCampaigns(ctx, brand.ID)
	if err != nil {
		return 0, err
	}
	schedules, err := u.repo.ListSchedulesByBrand(ctx, brand.ID)
	if err != nil {
		return 0, err
	}
	budgetOK := brandBudgetOK(brand, summary)

	applied := 0
	for i := range camps {
		camp := &camps[i]
		if !camp.ManualEnabled {
			// The kill switch wins over everything; repair any campaign a
			// crashed disable left in another state.
			if camp.Status != domain.StatusInactive {
				ok, err := u.repo.UpdateStatusAndRecordChange(ctx, camp.ID, camp.Status,
					domain.StatusInactive, domain.ReasonManualDisable, at)
				if err != nil {
					return applied, err
				}
				if ok {
					applied++
				}
			}
			continue
		}
		if camp.Status == domain.StatusInactive {
			continue
		}
		if onlyScheduled && len(schedules[camp.ID]) == 0 {
			continue
		}
		daypartOK := domain.ScheduleAllows(schedules[camp.ID], at, loc)
		next := domain.NextStatus(camp.Status, budgetOK, daypartOK)
		if next == camp.Status {
			continue
		}
		ok, err := u.repo.UpdateStatusAndRecordChange(ctx, camp.ID, camp.Status, next,
			domain.TransitionReason(camp.Status, next), at)
		if err != nil {
			return applied, err
		}
		if ok {
			applied++
			u.log.Info("campaign status changed",
				slog.Int64("campaign_id", camp.ID),
				slog.Int64("brand_id", brand.ID),
				slog.String("from", string(camp.Status)),
				slog.String("to", string(next)),
				slog.String("reason", string(domain.TransitionReason(camp.Status, next))))
		}
	}
	return applied, nil
}

// currentSummary returns the brand's summary for the date, materializing it
// from the ledger on first touch. Without this a sweep running just after
// midnight would see no row and mistake an exhausted month for a fresh one.
func (u *BudgetUseCase) currentSummary(ctx context.Context, brandID int64, date time.Time) (*domain.BudgetSummary, error) {
	s, err := u.repo.GetSummary(ctx, brandID, date)
	if err != nil || s != nil {
		return s, err
	}
	return u.repo.RecomputeSummary(ctx, brandID, date)
}

// brandBudgetOK derives the budget signal. Read paths may pass a nil
// summary when no row exists for the date yet; the signal then falls back
// to the configured budgets, so a zero-budget brand stays paused.
func brandBudgetOK(brand *domain.Brand, summary *domain.BudgetSummary) bool {
	if summary == nil {
		return brand.DailyBudget.IsPositive() && brand.MonthlyBudget.IsPositive()
	}
	return summary.HasBudget()
}

// remainingBudget returns the remaining daily and monthly amounts, falling
// back to the configured budgets when no spend was recorded for the date.
func remainingBudget(brand *domain.Brand, summary *domain.BudgetSummary) (decimal.Decimal, decimal.Decimal) {
	if summary == nil {
		return brand.DailyBudget, brand.MonthlyBudget
	}
	return summary.DailyRemaining, summary.MonthlyRemaining
}

// utilization returns spend as a percentage of budget rounded to two
// decimals. A zero budget counts as fully utilized.
func utilization(spend, budget decimal.Decimal) float64 {
	if budget.IsZero() {
		return 100
	}
	pct, _ := spend.Mul(decimal.NewFromInt(100)).Div(budget).Round(2).Float64()
	return pct
}

// activeSchedules filters the windows shown in status responses.
func activeSchedules(entries []domain.DaypartingSchedule) []domain.DaypartingSchedule {
	out := make([]domain.DaypartingSchedule, 0, len(entries))
	for _, e := range entries {
		if e.Active {
			out = append(out, e)
		}
	}
	return out
}
