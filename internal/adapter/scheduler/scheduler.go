// Package scheduler runs the periodic reconciliation jobs on gocron v2.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"adbudget/internal/config/configs"
	"adbudget/internal/core/port"
)

// Scheduler owns the background jobs: the two enforcement sweeps, the
// daily and monthly budget resets, and the nightly ledger cleanup. All
// cron expressions evaluate in UTC because spend dates do.
type Scheduler struct {
	scheduler  gocron.Scheduler
	svc        port.BudgetUseCase
	log        *slog.Logger
	jobTimeout time.Duration
}

func NewScheduler(svc port.BudgetUseCase, log *slog.Logger, cfg configs.Sweep) (*Scheduler, error) {
	gs, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		scheduler:  gs,
		svc:        svc,
		log:        log,
		jobTimeout: cfg.JobTimeout,
	}

	// Dayparting windows open and close on the clock, so this sweep runs
	// on a short interval and fires once at startup to repair any drift
	// accumulated while the process was down.
	_, err = gs.NewJob(
		gocron.DurationJob(cfg.DaypartingInterval),
		gocron.NewTask(func() { s.runSweep("dayparting sweep", s.svc.DaypartingSweep) }),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("dayparting-sweep"),
	)
	if err != nil {
		return nil, err
	}

	// The budget sweep re-checks every campaign against both signals. It
	// is the safety net for campaigns left running after a mid-request
	// failure, so it also fires once at startup.
	_, err = gs.NewJob(
		gocron.DurationJob(cfg.BudgetInterval),
		gocron.NewTask(func() { s.runSweep("budget sweep", s.svc.BudgetSweep) }),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("budget-sweep"),
	)
	if err != nil {
		return nil, err
	}

	// Midnight UTC: rebuild the new day's summaries and wake campaigns
	// paused on yesterday's daily budget.
	_, err = gs.NewJob(
		gocron.CronJob("0 0 * * *", false),
		gocron.NewTask(func() {
			s.runSweep("daily reset", func(ctx context.Context) (int, error) {
				return s.svc.ResetDaily(ctx, time.Now().UTC())
			})
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("daily-reset"),
	)
	if err != nil {
		return nil, err
	}

	// First of the month: same rebuild against the fresh monthly window.
	// It overlaps the daily reset at that instant; both are idempotent.
	_, err = gs.NewJob(
		gocron.CronJob("0 0 1 * *", false),
		gocron.NewTask(func() {
			s.runSweep("monthly reset", func(ctx context.Context) (int, error) {
				return s.svc.ResetMonthly(ctx, time.Now().UTC())
			})
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("monthly-reset"),
	)
	if err != nil {
		return nil, err
	}

	// Nightly cleanup trims raw spend records past the retention window.
	// Summary rows are kept, so historical totals survive the trim.
	_, err = gs.NewJob(
		gocron.CronJob("0 3 * * *", false),
		gocron.NewTask(func() { s.runCleanup(cfg.RetentionDays) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("spend-cleanup"),
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Start launches all registered jobs.
func (s *Scheduler) Start() {
	s.scheduler.Start()
	s.log.Info("scheduler started", slog.Int("jobs", len(s.scheduler.Jobs())))
}

// Stop shuts the scheduler down and waits for running jobs to finish.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Scheduler) runSweep(name string, fn func(context.Context) (int, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	start := time.Now()
	transitions, err := fn(ctx)
	if err != nil {
		s.log.Error(name+" failed",
			slog.Any("error", err),
			slog.Int("transitions", transitions),
			slog.Duration("elapsed", time.Since(start)),
		)
		return
	}
	if transitions > 0 {
		s.log.Info(name+" applied transitions",
			slog.Int("transitions", transitions),
			slog.Duration("elapsed", time.Since(start)),
		)
		return
	}
	s.log.Debug(name+" found nothing to do", slog.Duration("elapsed", time.Since(start)))
}

func (s *Scheduler) runCleanup(retentionDays int) {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	deleted, err := s.svc.CleanupSpendRecords(ctx, retentionDays)
	if err != nil {
		s.log.Error("spend cleanup failed", slog.Any("error", err))
		return
	}
	if deleted > 0 {
		s.log.Info("spend cleanup removed records",
			slog.Int64("deleted", deleted),
			slog.Int("retention_days", retentionDays),
		)
	}
}
