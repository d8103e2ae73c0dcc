package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"adbudget/internal/core/domain"
	"adbudget/internal/core/port"
)

type summaryKey struct {
	brandID int64
	date    time.Time
}

// BudgetRepository is an in-process implementation of port.BudgetRepository.
// It backs the test suite and works for single-node setups that don't need
// Postgres. One mutex serializes all writes, which trivially keeps each
// brand's summary linearizable; finer per-brand locking is the Postgres
// adapter's job.
type BudgetRepository struct {
	mu        sync.RWMutex
	brands    map[int64]*domain.Brand
	campaigns map[int64]*domain.Campaign
	schedules map[int64][]domain.DaypartingSchedule
	records   []domain.SpendRecord
	summaries map[summaryKey]*domain.BudgetSummary
	changes   []domain.StatusChange

	brandSeq  int64
	campSeq   int64
	schedSeq  int64
	recSeq    int64
	changeSeq int64
}

// NewBudgetRepository creates an empty in-memory store.
func NewBudgetRepository() *BudgetRepository {
	return &BudgetRepository{
		brands:    make(map[int64]*domain.Brand),
		campaigns: make(map[int64]*domain.Campaign),
		schedules: make(map[int64][]domain.DaypartingSchedule),
		summaries: make(map[summaryKey]*domain.BudgetSummary),
	}
}

func (r *BudgetRepository) CreateBrand(_ context.Context, b *domain.Brand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.brandSeq++
	b.ID = r.brandSeq
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	cp := *b
	r.brands[b.ID] = &cp
	return nil
}

func (r *BudgetRepository) GetBrand(_ context.Context, id int64) (*domain.Brand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.brands[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

// SetBrandActive flips a brand's active flag. The HTTP surface doesn't
// expose it yet; tests use it to exercise deactivated brands.
func (r *BudgetRepository) SetBrandActive(id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.brands[id]
	if !ok {
		return fmt.Errorf("%w: brand %d", port.ErrNotFound, id)
	}
	b.Active = active
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *BudgetRepository) ListActiveBrandIDs(_ context.Context, afterID int64, limit int) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.brands))
	for id, b := range r.brands {
		if b.Active && id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (r *BudgetRepository) CreateCampaign(_ context.Context, c *domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.brands[c.BrandID]; !ok {
		return fmt.Errorf("%w: brand %d", port.ErrNotFound, c.BrandID)
	}
	r.campSeq++
	c.ID = r.campSeq
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	cp := *c
	r.campaigns[c.ID] = &cp
	return nil
}

func (r *BudgetRepository) GetCampaign(_ context.Context, id int64) (*domain.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *BudgetRepository) ListBrandCampaigns(_ context.Context, brandID int64) ([]domain.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Campaign, 0)
	for _, c := range r.campaigns {
		if c.BrandID == brandID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *BudgetRepository) SetCampaignManualEnabled(_ context.Context, id int64, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return fmt.Errorf("%w: campaign %d", port.ErrNotFound, id)
	}
	c.ManualEnabled = enabled
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *BudgetRepository) UpdateStatusAndRecordChange(_ context.Context, campaignID int64, from, to domain.Status, reason domain.Reason, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[campaignID]
	if !ok {
		return false, fmt.Errorf("%w: campaign %d", port.ErrNotFound, campaignID)
	}
	if c.Status != from {
		return false, nil
	}
	c.Status = to
	c.UpdatedAt = at
	r.changeSeq++
	r.changes = append(r.changes, domain.StatusChange{
		ID:         r.changeSeq,
		CampaignID: campaignID,
		From:       from,
		To:         to,
		Reason:     reason,
		OccurredAt: at,
	})
	return true, nil
}

func (r *BudgetRepository) ListStatusChanges(_ context.Context, campaignID int64, limit int) ([]domain.StatusChange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.StatusChange, 0, limit)
	for i := len(r.changes) - 1; i >= 0 && len(out) < limit; i-- {
		if r.changes[i].CampaignID == campaignID {
			out = append(out, r.changes[i])
		}
	}
	return out, nil
}

func (r *BudgetRepository) CreateSchedule(_ context.Context, s *domain.DaypartingSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[s.CampaignID]; !ok {
		return fmt.Errorf("%w: campaign %d", port.ErrNotFound, s.CampaignID)
	}
	r.schedSeq++
	s.ID = r.schedSeq
	s.CreatedAt = time.Now().UTC()
	r.schedules[s.CampaignID] = append(r.schedules[s.CampaignID], *s)
	return nil
}

func (r *BudgetRepository) ListCampaignSchedules(_ context.Context, campaignID int64) ([]domain.DaypartingSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.schedules[campaignID]
	out := make([]domain.DaypartingSchedule, len(entries))
	copy(out, entries)
	return out, nil
}

func (r *BudgetRepository) ListSchedulesByBrand(_ context.Context, brandID int64) (map[int64][]domain.DaypartingSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int64][]domain.DaypartingSchedule)
	for campID, entries := range r.schedules {
		c, ok := r.campaigns[campID]
		if !ok || c.BrandID != brandID || len(entries) == 0 {
			continue
		}
		cp := make([]domain.DaypartingSchedule, len(entries))
		copy(cp, entries)
		out[campID] = cp
	}
	return out, nil
}

func (r *BudgetRepository) ApplySpend(_ context.Context, rec *domain.SpendRecord) (*domain.BudgetSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	brand, ok := r.brands[rec.BrandID]
	if !ok {
		return nil, fmt.Errorf("%w: brand %d", port.ErrNotFound, rec.BrandID)
	}
	date := domain.DateOf(rec.SpendDate)
	sum := r.summaryLocked(brand, date)

	r.recSeq++
	rec.ID = r.recSeq
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	r.records = append(r.records, *rec)

	sum.DailySpend = sum.DailySpend.Add(rec.Amount)
	sum.MonthlySpend = sum.MonthlySpend.Add(rec.Amount)
	sum.DailyRemaining = brand.DailyBudget.Sub(sum.DailySpend)
	sum.MonthlyRemaining = brand.MonthlyBudget.Sub(sum.MonthlySpend)
	sum.UpdatedAt = time.Now().UTC()

	// a late event must also reach the monthly totals of rows already
	// materialized for later dates of the same month
	next := domain.NextMonthStart(date)
	for key, other := range r.summaries {
		if key.brandID == rec.BrandID && other.Date.After(date) && other.Date.Before(next) {
			other.MonthlySpend = other.MonthlySpend.Add(rec.Amount)
			other.MonthlyRemaining = brand.MonthlyBudget.Sub(other.MonthlySpend)
			other.UpdatedAt = sum.UpdatedAt
		}
	}

	cp := *sum
	return &cp, nil
}

func (r *BudgetRepository) GetSummary(_ context.Context, brandID int64, date time.Time) (*domain.BudgetSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.summaries[summaryKey{brandID, domain.DateOf(date)}]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *BudgetRepository) RecomputeSummary(_ context.Context, brandID int64, date time.Time) (*domain.BudgetSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	brand, ok := r.brands[brandID]
	if !ok {
		return nil, fmt.Errorf("%w: brand %d", port.ErrNotFound, brandID)
	}
	date = domain.DateOf(date)
	daily, monthly := r.ledgerTotalsLocked(brandID, date)
	s := &domain.BudgetSummary{
		BrandID:          brandID,
		Date:             date,
		DailySpend:       daily,
		MonthlySpend:     monthly,
		DailyRemaining:   brand.DailyBudget.Sub(daily),
		MonthlyRemaining: brand.MonthlyBudget.Sub(monthly),
		UpdatedAt:        time.Now().UTC(),
	}
	r.summaries[summaryKey{brandID, date}] = s
	cp := *s
	return &cp, nil
}

func (r *BudgetRepository) DeleteSpendRecordsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.records[:0]
	var deleted int64
	for _, rec := range r.records {
		if rec.SpendDate.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	r.records = kept
	return deleted, nil
}

// summaryLocked returns the summary row for the date, creating it with
// totals derived from the ledger when absent. Caller holds the write lock.
func (r *BudgetRepository) summaryLocked(brand *domain.Brand, date time.Time) *domain.BudgetSummary {
	key := summaryKey{brand.ID, date}
	if s, ok := r.summaries[key]; ok {
		return s
	}
	daily, monthly := r.ledgerTotalsLocked(brand.ID, date)
	s := &domain.BudgetSummary{
		BrandID:          brand.ID,
		Date:             date,
		DailySpend:       daily,
		MonthlySpend:     monthly,
		DailyRemaining:   brand.DailyBudget.Sub(daily),
		MonthlyRemaining: brand.MonthlyBudget.Sub(monthly),
		UpdatedAt:        time.Now().UTC(),
	}
	r.summaries[key] = s
	return s
}

// ledgerTotalsLocked sums the brand's records dated exactly date and those
// from the first of date's month through date. Caller holds a lock.
func (r *BudgetRepository) ledgerTotalsLocked(brandID int64, date time.Time) (daily, monthly decimal.Decimal) {
	monthStart := domain.MonthStart(date)
	for i := range r.records {
		rec := &r.records[i]
		if rec.BrandID != brandID {
			continue
		}
		if rec.SpendDate.Equal(date) {
			daily = daily.Add(rec.Amount)
		}
		if !rec.SpendDate.Before(monthStart) && !rec.SpendDate.After(date) {
			monthly = monthly.Add(rec.Amount)
		}
	}
	return daily, monthly
}
