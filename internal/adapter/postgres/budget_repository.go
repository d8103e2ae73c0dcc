package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"adbudget/internal/core/domain"
	"adbudget/internal/core/port"
)

const (
	txMaxRetries = 4
	txRetryBase  = 10 * time.Millisecond
)

// BudgetRepository implements port.BudgetRepository using pgxpool for
// PostgreSQL. Spend and recompute transactions run under serializable
// isolation and take the brand row lock first, so all summary writes for
// one brand queue behind each other.
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository returns a new repository instance.
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// retrySerializable reruns fn when Postgres aborts it with a serialization
// or deadlock failure (SQLSTATE 40001, 40P01). Retrying the whole
// transaction is the documented recovery under serializable isolation. When
// the retry budget runs out, the error surfaces as port.ErrConflict.
func (r *BudgetRepository) retrySerializable(ctx context.Context, fn func(context.Context) error) error {
	b := retry.WithMaxRetries(txMaxRetries, retry.NewExponential(txRetryBase))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
			return retry.RetryableError(fmt.Errorf("%w: %v", port.ErrConflict, err))
		}
		return err
	})
}

func (r *BudgetRepository) CreateBrand(ctx context.Context, b *domain.Brand) error {
	return r.pool.QueryRow(ctx, `
        INSERT INTO brands (name, daily_budget, monthly_budget, timezone, active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`,
		b.Name, b.DailyBudget, b.MonthlyBudget, b.Timezone, b.Active).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *BudgetRepository) GetBrand(ctx context.Context, id int64) (*domain.Brand, error) {
	var b domain.Brand
	err := r.pool.QueryRow(ctx, `
        SELECT id, name, daily_budget, monthly_budget, timezone, active, created_at, updated_at
        FROM brands WHERE id = $1`, id).
		Scan(&b.ID, &b.Name, &b.DailyBudget, &b.MonthlyBudget, &b.Timezone, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BudgetRepository) ListActiveBrandIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id FROM brands
        WHERE active AND id > $1
        ORDER BY id
        LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (r *BudgetRepository) CreateCampaign(ctx context.Context, c *domain.Campaign) error {
	return r.pool.QueryRow(ctx, `
        INSERT INTO campaigns (brand_id, name, status, manual_enabled)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`,
		c.BrandID, c.Name, c.Status, c.ManualEnabled).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *BudgetRepository) GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error) {
	var c domain.Campaign
	err := r.pool.QueryRow(ctx, `
        SELECT id, brand_id, name, status, manual_enabled, created_at, updated_at
        FROM campaigns WHERE id = $1`, id).
		Scan(&c.ID, &c.BrandID, &c.Name, &c.Status, &c.ManualEnabled, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *BudgetRepository) ListBrandCampaigns(ctx context.Context, brandID int64) ([]domain.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, brand_id, name, status, manual_enabled, created_at, updated_at
        FROM campaigns WHERE brand_id = $1
        ORDER BY id`, brandID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Campaign, error) {
		var c domain.Campaign
		err := row.Scan(&c.ID, &c.BrandID, &c.Name, &c.Status, &c.ManualEnabled, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	})
}

func (r *BudgetRepository) SetCampaignManualEnabled(ctx context.Context, id int64, enabled bool) error {
	tag, err := r.pool.Exec(ctx, `
        UPDATE campaigns SET manual_enabled = $1, updated_at = now()
        WHERE id = $2`, enabled, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: campaign %d", port.ErrNotFound, id)
	}
	return nil
}

// UpdateStatusAndRecordChange is a compare-and-set on the campaign row: the
// guarded UPDATE only matches when the status is still the expected one,
// and the audit insert commits in the same transaction. Losing the race
// reports false with no error and writes nothing.
func (r *BudgetRepository) UpdateStatusAndRecordChange(ctx context.Context, campaignID int64, from, to domain.Status, reason domain.Reason, at time.Time) (applied bool, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("%w: begin: %v", port.ErrStoreUnavailable, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
		applied = applied && err == nil
	}()

	tag, err := tx.Exec(ctx, `
        UPDATE campaigns SET status = $1, updated_at = $2
        WHERE id = $3 AND status = $4`, to, at, campaignID, from)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM campaigns WHERE id = $1)`, campaignID).Scan(&exists); err != nil {
			return false, err
		}
		if !exists {
			err = fmt.Errorf("%w: campaign %d", port.ErrNotFound, campaignID)
			return false, err
		}
		return false, nil
	}
	_, err = tx.Exec(ctx, `
        INSERT INTO status_changes (campaign_id, from_status, to_status, reason, occurred_at)
        VALUES ($1, $2, $3, $4, $5)`, campaignID, from, to, reason, at)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *BudgetRepository) ListStatusChanges(ctx context.Context, campaignID int64, limit int) ([]domain.StatusChange, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, campaign_id, from_status, to_status, reason, occurred_at
        FROM status_changes WHERE campaign_id = $1
        ORDER BY id DESC
        LIMIT $2`, campaignID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.StatusChange, error) {
		var sc domain.StatusChange
		err := row.Scan(&sc.ID, &sc.CampaignID, &sc.From, &sc.To, &sc.Reason, &sc.OccurredAt)
		return sc, err
	})
}

func (r *BudgetRepository) CreateSchedule(ctx context.Context, s *domain.DaypartingSchedule) error {
	return r.pool.QueryRow(ctx, `
        INSERT INTO dayparting_schedules (campaign_id, day_of_week, start_hour, end_hour, active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`,
		s.CampaignID, s.DayOfWeek, s.StartHour, s.EndHour, s.Active).
		Scan(&s.ID, &s.CreatedAt)
}

func (r *BudgetRepository) ListCampaignSchedules(ctx context.Context, campaignID int64) ([]domain.DaypartingSchedule, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, campaign_id, day_of_week, start_hour, end_hour, active, created_at
        FROM dayparting_schedules WHERE campaign_id = $1
        ORDER BY day_of_week, start_hour`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanSchedule)
}

func (r *BudgetRepository) ListSchedulesByBrand(ctx context.Context, brandID int64) (map[int64][]domain.DaypartingSchedule, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT s.id, s.campaign_id, s.day_of_week, s.start_hour, s.end_hour, s.active, s.created_at
        FROM dayparting_schedules s
        JOIN campaigns c ON c.id = s.campaign_id
        WHERE c.brand_id = $1
        ORDER BY s.campaign_id, s.day_of_week, s.start_hour`, brandID)
	if err != nil {
		return nil, err
	}
	entries, err := pgx.CollectRows(rows, scanSchedule)
	if err != nil {
		return nil, err
	}
	out := make(map[int64][]domain.DaypartingSchedule)
	for _, e := range entries {
		out[e.CampaignID] = append(out[e.CampaignID], e)
	}
	return out, nil
}

func scanSchedule(row pgx.CollectableRow) (domain.DaypartingSchedule, error) {
	var s domain.DaypartingSchedule
	err := row.Scan(&s.ID, &s.CampaignID, &s.DayOfWeek, &s.StartHour, &s.EndHour, &s.Active, &s.CreatedAt)
	return s, err
}

func (r *BudgetRepository) ApplySpend(ctx context.Context, rec *domain.SpendRecord) (*domain.BudgetSummary, error) {
	var out *domain.BudgetSummary
	err := r.retrySerializable(ctx, func(ctx context.Context) error {
		var err error
		out, err = r.applySpendTx(ctx, rec)
		return err
	})
	return out, err
}

func (r *BudgetRepository) applySpendTx(ctx context.Context, rec *domain.SpendRecord) (_ *domain.BudgetSummary, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", port.ErrStoreUnavailable, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	// lock the brand row; every spend write for this brand queues here
	var dailyBudget, monthlyBudget decimal.Decimal
	err = tx.QueryRow(ctx, `SELECT daily_budget, monthly_budget FROM brands WHERE id = $1 FOR UPDATE`, rec.BrandID).
		Scan(&dailyBudget, &monthlyBudget)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: brand %d", port.ErrNotFound, rec.BrandID)
	}
	if err != nil {
		return nil, err
	}

	// seed the summary row from the ledger before the new record goes in,
	// so a first spend on a fresh date starts from month-to-date totals
	_, err = tx.Exec(ctx, `
        INSERT INTO budget_summaries (brand_id, date, daily_spend, monthly_spend, daily_remaining, monthly_remaining, updated_at)
        SELECT $1, $2::date,
               COALESCE(SUM(amount) FILTER (WHERE spend_date = $2), 0),
               COALESCE(SUM(amount), 0),
               $3 - COALESCE(SUM(amount) FILTER (WHERE spend_date = $2), 0),
               $4 - COALESCE(SUM(amount), 0),
               now()
        FROM spend_records
        WHERE brand_id = $1 AND spend_date >= $5 AND spend_date <= $2
        ON CONFLICT (brand_id, date) DO NOTHING`,
		rec.BrandID, rec.SpendDate, dailyBudget, monthlyBudget, domain.MonthStart(rec.SpendDate))
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, `
        INSERT INTO spend_records (token, brand_id, campaign_id, amount, spend_date, occurred_at, recorded_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`,
		rec.Token, rec.BrandID, rec.CampaignID, rec.Amount, rec.SpendDate, rec.OccurredAt, rec.RecordedAt).
		Scan(&rec.ID)
	if err != nil {
		return nil, err
	}

	s := &domain.BudgetSummary{BrandID: rec.BrandID, Date: rec.SpendDate}
	err = tx.QueryRow(ctx, `
        UPDATE budget_summaries SET
            daily_spend = daily_spend + $3,
            monthly_spend = monthly_spend + $3,
            daily_remaining = $4 - (daily_spend + $3),
            monthly_remaining = $5 - (monthly_spend + $3),
            updated_at = now()
        WHERE brand_id = $1 AND date = $2
        RETURNING daily_spend, monthly_spend, daily_remaining, monthly_remaining, updated_at`,
		rec.BrandID, rec.SpendDate, rec.Amount, dailyBudget, monthlyBudget).
		Scan(&s.DailySpend, &s.MonthlySpend, &s.DailyRemaining, &s.MonthlyRemaining, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	// a late event must also reach the monthly totals of rows already
	// materialized for later dates of the same month
	_, err = tx.Exec(ctx, `
        UPDATE budget_summaries SET
            monthly_spend = monthly_spend + $3,
            monthly_remaining = monthly_remaining - $3,
            updated_at = now()
        WHERE brand_id = $1 AND date > $2 AND date < $4`,
		rec.BrandID, rec.SpendDate, rec.Amount, domain.NextMonthStart(rec.SpendDate))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *BudgetRepository) GetSummary(ctx context.Context, brandID int64, date time.Time) (*domain.BudgetSummary, error) {
	var s domain.BudgetSummary
	err := r.pool.QueryRow(ctx, `
        SELECT brand_id, date, daily_spend, monthly_spend, daily_remaining, monthly_remaining, updated_at
        FROM budget_summaries WHERE brand_id = $1 AND date = $2`, brandID, date).
		Scan(&s.BrandID, &s.Date, &s.DailySpend, &s.MonthlySpend, &s.DailyRemaining, &s.MonthlyRemaining, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *BudgetRepository) RecomputeSummary(ctx context.Context, brandID int64, date time.Time) (*domain.BudgetSummary, error) {
	var out *domain.BudgetSummary
	err := r.retrySerializable(ctx, func(ctx context.Context) error {
		var err error
		out, err = r.recomputeSummaryTx(ctx, brandID, date)
		return err
	})
	return out, err
}

func (r *BudgetRepository) recomputeSummaryTx(ctx context.Context, brandID int64, date time.Time) (_ *domain.BudgetSummary, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", port.ErrStoreUnavailable, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	var dailyBudget, monthlyBudget decimal.Decimal
	err = tx.QueryRow(ctx, `SELECT daily_budget, monthly_budget FROM brands WHERE id = $1 FOR UPDATE`, brandID).
		Scan(&dailyBudget, &monthlyBudget)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: brand %d", port.ErrNotFound, brandID)
	}
	if err != nil {
		return nil, err
	}

	var daily, monthly decimal.Decimal
	err = tx.QueryRow(ctx, `
        SELECT COALESCE(SUM(amount) FILTER (WHERE spend_date = $2), 0),
               COALESCE(SUM(amount), 0)
        FROM spend_records
        WHERE brand_id = $1 AND spend_date >= $3 AND spend_date <= $2`,
		brandID, date, domain.MonthStart(date)).
		Scan(&daily, &monthly)
	if err != nil {
		return nil, err
	}

	s := &domain.BudgetSummary{BrandID: brandID, Date: date}
	err = tx.QueryRow(ctx, `
        INSERT INTO budget_summaries (brand_id, date, daily_spend, monthly_spend, daily_remaining, monthly_remaining, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, now())
        ON CONFLICT (brand_id, date) DO UPDATE SET
            daily_spend = EXCLUDED.daily_spend,
            monthly_spend = EXCLUDED.monthly_spend,
            daily_remaining = EXCLUDED.daily_remaining,
            monthly_remaining = EXCLUDED.monthly_remaining,
            updated_at = now()
        RETURNING daily_spend, monthly_spend, daily_remaining, monthly_remaining, updated_at`,
		brandID, date, daily, monthly, dailyBudget.Sub(daily), monthlyBudget.Sub(monthly)).
		Scan(&s.DailySpend, &s.MonthlySpend, &s.DailyRemaining, &s.MonthlyRemaining, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *BudgetRepository) DeleteSpendRecordsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM spend_records WHERE spend_date < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
