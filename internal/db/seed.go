package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed inserts demo brands, campaigns, dayparting schedules and a little
// spend history. Rows use fixed ids with ON CONFLICT DO NOTHING so the seed
// can run repeatedly against the same database.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	brands := []struct {
		id            int64
		name          string
		daily, mnthly string
		timezone      string
	}{
		{1, "Acme Outdoor", "500.00", "12000.00", "America/New_York"},
		{2, "Blue Harbor Coffee", "150.00", "4000.00", "Europe/Berlin"},
		{3, "Nightowl Games", "1000.00", "25000.00", "UTC"},
	}
	for _, b := range brands {
		_, err := db.Exec(ctx, `INSERT INTO brands (id, name, daily_budget, monthly_budget, timezone, active)
VALUES ($1,$2,$3,$4,$5,TRUE) ON CONFLICT DO NOTHING`,
			b.id, b.name, b.daily, b.mnthly, b.timezone)
		if err != nil {
			return err
		}
	}

	campaigns := []struct {
		id, brandID int64
		name        string
		status      string
		enabled     bool
	}{
		{1, 1, "Acme Summer Sale", "ACTIVE", true},
		{2, 1, "Acme Brand Video", "INACTIVE", true},
		{3, 1, "Acme Clearance", "PAUSED_DAYPART", true},
		{4, 2, "Harbor Morning Rush", "ACTIVE", true},
		{5, 2, "Harbor Weekend Promo", "INACTIVE", false},
		{6, 3, "Nightowl Launch", "ACTIVE", true},
		{7, 3, "Nightowl Retargeting", "PAUSED_BUDGET", true},
	}
	for _, c := range campaigns {
		_, err := db.Exec(ctx, `INSERT INTO campaigns (id, brand_id, name, status, manual_enabled)
VALUES ($1,$2,$3,$4,$5) ON CONFLICT DO NOTHING`,
			c.id, c.brandID, c.name, c.status, c.enabled)
		if err != nil {
			return err
		}
	}

	// dayparting: Acme Clearance runs weekday business hours, Harbor
	// Morning Rush every morning, Nightowl Retargeting late evenings
	schedID := int64(0)
	addWindow := func(campaignID int64, day, start, end int) error {
		schedID++
		_, err := db.Exec(ctx, `INSERT INTO dayparting_schedules (id, campaign_id, day_of_week, start_hour, end_hour, active)
VALUES ($1,$2,$3,$4,$5,TRUE) ON CONFLICT DO NOTHING`,
			schedID, campaignID, day, start, end)
		return err
	}
	for day := 0; day <= 4; day++ {
		if err := addWindow(3, day, 9, 18); err != nil {
			return err
		}
	}
	for day := 0; day <= 6; day++ {
		if err := addWindow(4, day, 6, 11); err != nil {
			return err
		}
		if err := addWindow(7, day, 20, 23); err != nil {
			return err
		}
	}

	// spend history for today
	spends := []struct {
		brandID, campaignID int64
		n                   int
		maxCents            int
	}{
		{1, 1, 6, 4000},
		{2, 4, 3, 1500},
		{3, 6, 8, 9000},
	}
	for _, sp := range spends {
		for i := 0; i < sp.n; i++ {
			amount := fmt.Sprintf("%d.%02d", r.Intn(sp.maxCents)/100, r.Intn(100))
			occurred := time.Now().UTC().Add(-time.Duration(r.Intn(8)) * time.Hour)
			_, err := db.Exec(ctx, `INSERT INTO spend_records (token, brand_id, campaign_id, amount, spend_date, occurred_at)
VALUES ($1,$2,$3,$4,CURRENT_DATE,$5) ON CONFLICT DO NOTHING`,
				uuid.NewString(), sp.brandID, sp.campaignID, amount, occurred)
			if err != nil {
				return err
			}
		}
	}

	// derive today's summary rows from the seeded ledger
	_, err := db.Exec(ctx, `
INSERT INTO budget_summaries (brand_id, date, daily_spend, monthly_spend, daily_remaining, monthly_remaining)
SELECT b.id, CURRENT_DATE,
       COALESCE(s.daily, 0), COALESCE(s.monthly, 0),
       b.daily_budget - COALESCE(s.daily, 0),
       b.monthly_budget - COALESCE(s.monthly, 0)
FROM brands b
LEFT JOIN (
    SELECT brand_id,
           SUM(amount) FILTER (WHERE spend_date = CURRENT_DATE) AS daily,
           SUM(amount) AS monthly
    FROM spend_records
    WHERE spend_date >= date_trunc('month', CURRENT_DATE)::date
    GROUP BY brand_id
) s ON s.brand_id = b.id
ON CONFLICT (brand_id, date) DO NOTHING`)
	if err != nil {
		return err
	}

	// fixed-id inserts bypass the sequences; move them past the seed data
	for _, q := range []string{
		`SELECT setval('brands_id_seq', (SELECT COALESCE(MAX(id), 1) FROM brands))`,
		`SELECT setval('campaigns_id_seq', (SELECT COALESCE(MAX(id), 1) FROM campaigns))`,
		`SELECT setval('dayparting_schedules_id_seq', (SELECT COALESCE(MAX(id), 1) FROM dayparting_schedules))`,
	} {
		if _, err := db.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
