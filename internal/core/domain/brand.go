package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Brand represents an advertiser whose campaigns share a daily and a
// monthly budget. Budgets are decimal amounts in the account currency.
type Brand struct {
	ID            int64
	Name          string
	DailyBudget   decimal.Decimal
	MonthlyBudget decimal.Decimal
	Timezone      string // IANA zone name, e.g. "America/New_York"
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Location resolves the brand's IANA timezone.
func (b *Brand) Location() (*time.Location, error) {
	return time.LoadLocation(b.Timezone)
}
