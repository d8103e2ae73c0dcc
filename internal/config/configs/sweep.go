package configs

import "time"

// Sweep configures the periodic reconciliation jobs. Intervals use Go
// duration syntax. The cron-based jobs (daily and monthly resets, ledger
// cleanup) run on fixed UTC schedules and are not configurable here.
type Sweep struct {
	// DaypartingInterval is how often campaigns with dayparting windows
	// are re-evaluated against the clock. Defaults to 5 minutes so a
	// window boundary is never missed by more than one interval.
	DaypartingInterval time.Duration `env:"DAYPARTING_INTERVAL" envDefault:"5m"`
	// BudgetInterval is how often every campaign is re-checked against
	// both the budget and dayparting signals.
	BudgetInterval time.Duration `env:"BUDGET_INTERVAL" envDefault:"5m"`
	// JobTimeout bounds a single job run; a run that exceeds it is
	// cancelled and picked up again on the next tick.
	JobTimeout time.Duration `env:"JOB_TIMEOUT" envDefault:"5m"`
	// RetentionDays is how long raw spend records are kept before the
	// nightly cleanup trims them. Summary rows are never trimmed.
	RetentionDays int `env:"RETENTION_DAYS" envDefault:"90"`
}
