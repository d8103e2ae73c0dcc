package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpendRecord is one immutable ledger entry. Records are only ever inserted;
// totals for any period can be rebuilt by summing them. SpendDate is the UTC
// calendar date the spend is attributed to.
type SpendRecord struct {
	ID         int64
	Token      string
	BrandID    int64
	CampaignID int64
	Amount     decimal.Decimal
	SpendDate  time.Time
	OccurredAt time.Time
	RecordedAt time.Time
}

// BudgetSummary caches a brand's running totals for one date so budget
// checks don't scan the ledger. It is derived state: RecomputeSummary can
// rebuild any row from spend records alone.
type BudgetSummary struct {
	BrandID          int64
	Date             time.Time
	DailySpend       decimal.Decimal
	MonthlySpend     decimal.Decimal
	DailyRemaining   decimal.Decimal
	MonthlyRemaining decimal.Decimal
	UpdatedAt        time.Time
}

// HasBudget reports whether both remaining values are still positive.
// Exactly zero counts as exhausted.
func (s *BudgetSummary) HasBudget() bool {
	return s.DailyRemaining.IsPositive() && s.MonthlyRemaining.IsPositive()
}

// DateOf truncates an instant to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of t's UTC month.
func MonthStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextMonthStart returns the first day of the month after t's UTC month.
func NextMonthStart(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0)
}
