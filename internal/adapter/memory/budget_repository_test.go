package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adbudget/internal/core/domain"
	"adbudget/internal/core/port"
)

func day(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

func seedBrand(t *testing.T, r *BudgetRepository, daily, monthly string) *domain.Brand {
	t.Helper()
	b := &domain.Brand{
		Name:          "brand",
		DailyBudget:   decimal.RequireFromString(daily),
		MonthlyBudget: decimal.RequireFromString(monthly),
		Timezone:      "UTC",
		Active:        true,
	}
	require.NoError(t, r.CreateBrand(context.Background(), b))
	return b
}

func seedCampaign(t *testing.T, r *BudgetRepository, brandID int64) *domain.Campaign {
	t.Helper()
	c := &domain.Campaign{
		BrandID:       brandID,
		Name:          "campaign",
		Status:        domain.StatusInactive,
		ManualEnabled: true,
	}
	require.NoError(t, r.CreateCampaign(context.Background(), c))
	return c
}

func spend(t *testing.T, r *BudgetRepository, brandID, campID int64, amount string, date time.Time) *domain.BudgetSummary {
	t.Helper()
	sum, err := r.ApplySpend(context.Background(), &domain.SpendRecord{
		Token:      fmt.Sprintf("tok-%d", time.Now().UnixNano()),
		BrandID:    brandID,
		CampaignID: campID,
		Amount:     decimal.RequireFromString(amount),
		SpendDate:  date,
		OccurredAt: date.Add(12 * time.Hour),
	})
	require.NoError(t, err)
	return sum
}

func wantDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)), "want %s, got %s", want, got)
}

func TestApplySpendConcurrent(t *testing.T) {
	r := NewBudgetRepository()
	brand := seedBrand(t, r, "1000", "10000")
	camp := seedCampaign(t, r, brand.ID)
	ctx := context.Background()

	var wg sync.WaitGroup
	workers := 40
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		i := i
		go func() {
			defer wg.Done()
			_, err := r.ApplySpend(ctx, &domain.SpendRecord{
				Token:      fmt.Sprintf("tok-%d", i),
				BrandID:    brand.ID,
				CampaignID: camp.ID,
				Amount:     decimal.RequireFromString("3"),
				SpendDate:  day(2),
				OccurredAt: day(2),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sum, err := r.GetSummary(ctx, brand.ID, day(2))
	require.NoError(t, err)
	require.NotNil(t, sum)
	wantDecimal(t, "120", sum.DailySpend)
	wantDecimal(t, "880", sum.DailyRemaining)

	recomputed, err := r.RecomputeSummary(ctx, brand.ID, day(2))
	require.NoError(t, err)
	assert.True(t, recomputed.DailySpend.Equal(sum.DailySpend), "running total drifted from ledger")
}

// TestApplySpendFirstTouchDerivesFromLedger: the first write to a date must
// seed month-to-date from existing records, not start from zero.
func TestApplySpendFirstTouchDerivesFromLedger(t *testing.T) {
	r := NewBudgetRepository()
	brand := seedBrand(t, r, "100", "1000")
	camp := seedCampaign(t, r, brand.ID)

	spend(t, r, brand.ID, camp.ID, "10", day(1))
	sum := spend(t, r, brand.ID, camp.ID, "5", day(3))

	wantDecimal(t, "5", sum.DailySpend)
	wantDecimal(t, "15", sum.MonthlySpend)
	wantDecimal(t, "95", sum.DailyRemaining)
	wantDecimal(t, "985", sum.MonthlyRemaining)
}

// TestApplySpendLateEventRipple: a spend dated in the past updates the
// monthly totals of later rows in the same month and leaves other months
// alone.
func TestApplySpendLateEventRipple(t *testing.T) {
	r := NewBudgetRepository()
	brand := seedBrand(t, r, "100", "1000")
	camp := seedCampaign(t, r, brand.ID)
	ctx := context.Background()

	spend(t, r, brand.ID, camp.ID, "20", day(2))
	july := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	spend(t, r, brand.ID, camp.ID, "1", july)

	late := spend(t, r, brand.ID, camp.ID, "7", day(1))
	wantDecimal(t, "7", late.DailySpend)
	wantDecimal(t, "7", late.MonthlySpend)

	sum, err := r.GetSummary(ctx, brand.ID, day(2))
	require.NoError(t, err)
	require.NotNil(t, sum)
	wantDecimal(t, "20", sum.DailySpend)
	wantDecimal(t, "27", sum.MonthlySpend)
	wantDecimal(t, "973", sum.MonthlyRemaining)

	julySum, err := r.GetSummary(ctx, brand.ID, july)
	require.NoError(t, err)
	require.NotNil(t, julySum)
	wantDecimal(t, "1", julySum.MonthlySpend)
}

func TestRecomputeSummaryMatchesLedger(t *testing.T) {
	r := NewBudgetRepository()
	brand := seedBrand(t, r, "100", "1000")
	camp := seedCampaign(t, r, brand.ID)
	ctx := context.Background()

	spend(t, r, brand.ID, camp.ID, "10", day(1))
	spend(t, r, brand.ID, camp.ID, "25", day(2))
	spend(t, r, brand.ID, camp.ID, "5", day(2))
	spend(t, r, brand.ID, camp.ID, "40", day(3))

	sum, err := r.RecomputeSummary(ctx, brand.ID, day(2))
	require.NoError(t, err)
	wantDecimal(t, "30", sum.DailySpend)
	wantDecimal(t, "40", sum.MonthlySpend)
	wantDecimal(t, "70", sum.DailyRemaining)
	wantDecimal(t, "960", sum.MonthlyRemaining)

	// The stored row now matches what was returned.
	stored, err := r.GetSummary(ctx, brand.ID, day(2))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.MonthlySpend.Equal(sum.MonthlySpend))

	_, err = r.RecomputeSummary(ctx, 9999, day(2))
	require.ErrorIs(t, err, port.ErrNotFound)
}

func TestUpdateStatusCompareAndSet(t *testing.T) {
	r := NewBudgetRepository()
	brand := seedBrand(t, r, "100", "1000")
	camp := seedCampaign(t, r, brand.ID)
	ctx := context.Background()
	at := day(2)

	// Stale expectation: no write, no audit row.
	applied, err := r.UpdateStatusAndRecordChange(ctx, camp.ID,
		domain.StatusActive, domain.StatusPausedBudget, domain.ReasonBudgetExhausted, at)
	require.NoError(t, err)
	assert.False(t, applied)
	changes, err := r.ListStatusChanges(ctx, camp.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, changes)

	applied, err = r.UpdateStatusAndRecordChange(ctx, camp.ID,
		domain.StatusInactive, domain.StatusActive, domain.ReasonManualEnable, at)
	require.NoError(t, err)
	assert.True(t, applied)

	fresh, err := r.GetCampaign(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, fresh.Status)
	changes, err = r.ListStatusChanges(ctx, camp.ID, 10)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, domain.StatusInactive, changes[0].From)
	assert.Equal(t, domain.StatusActive, changes[0].To)
	assert.Equal(t, domain.ReasonManualEnable, changes[0].Reason)

	_, err = r.UpdateStatusAndRecordChange(ctx, 9999,
		domain.StatusActive, domain.StatusInactive, domain.ReasonManualDisable, at)
	require.ErrorIs(t, err, port.ErrNotFound)
}

func TestListStatusChangesNewestFirst(t *testing.T) {
	r := NewBudgetRepository()
	brand := seedBrand(t, r, "100", "1000")
	campA := seedCampaign(t, r, brand.ID)
	campB := seedCampaign(t, r, brand.ID)
	ctx := context.Background()

	steps := []struct {
		camp   *domain.Campaign
		from   domain.Status
		to     domain.Status
		reason domain.Reason
	}{
		{campA, domain.StatusInactive, domain.StatusActive, domain.ReasonManualEnable},
		{campB, domain.StatusInactive, domain.StatusActive, domain.ReasonManualEnable},
		{campA, domain.StatusActive, domain.StatusPausedBudget, domain.ReasonBudgetExhausted},
		{campA, domain.StatusPausedBudget, domain.StatusActive, domain.ReasonBudgetAvailable},
	}
	for _, s := range steps {
		applied, err := r.UpdateStatusAndRecordChange(ctx, s.camp.ID, s.from, s.to, s.reason, day(2))
		require.NoError(t, err)
		require.True(t, applied)
	}

	changes, err := r.ListStatusChanges(ctx, campA.ID, 2)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, domain.ReasonBudgetAvailable, changes[0].Reason)
	assert.Equal(t, domain.ReasonBudgetExhausted, changes[1].Reason)

	all, err := r.ListStatusChanges(ctx, campA.ID, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3, "other campaigns' rows are filtered out")
}

func TestListActiveBrandIDsPagination(t *testing.T) {
	r := NewBudgetRepository()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		seedBrand(t, r, "100", "1000")
	}
	require.NoError(t, r.SetBrandActive(3, false))

	page, err := r.ListActiveBrandIDs(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, page)

	page, err = r.ListActiveBrandIDs(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, page)

	page, err = r.ListActiveBrandIDs(ctx, 5, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestDeleteSpendRecordsBefore(t *testing.T) {
	r := NewBudgetRepository()
	brand := seedBrand(t, r, "100", "1000")
	camp := seedCampaign(t, r, brand.ID)
	ctx := context.Background()

	spend(t, r, brand.ID, camp.ID, "10", day(1))
	spend(t, r, brand.ID, camp.ID, "10", day(2))
	spend(t, r, brand.ID, camp.ID, "10", day(3))

	deleted, err := r.DeleteSpendRecordsBefore(ctx, day(2))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = r.DeleteSpendRecordsBefore(ctx, day(2))
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	// Summaries survive the trim; only raw records go.
	sum, err := r.GetSummary(ctx, brand.ID, day(1))
	require.NoError(t, err)
	require.NotNil(t, sum)
	wantDecimal(t, "10", sum.DailySpend)
}

func TestGettersReturnCopies(t *testing.T) {
	r := NewBudgetRepository()
	brand := seedBrand(t, r, "100", "1000")
	camp := seedCampaign(t, r, brand.ID)
	ctx := context.Background()

	b, err := r.GetBrand(ctx, brand.ID)
	require.NoError(t, err)
	b.Name = "mutated"
	b2, err := r.GetBrand(ctx, brand.ID)
	require.NoError(t, err)
	assert.Equal(t, "brand", b2.Name)

	c, err := r.GetCampaign(ctx, camp.ID)
	require.NoError(t, err)
	c.Status = domain.StatusActive
	c2, err := r.GetCampaign(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, c2.Status)

	missing, err := r.GetBrand(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
