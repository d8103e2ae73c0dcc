package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adbudget/internal/adapter/memory"
	"adbudget/internal/adapter/usecase"
	"adbudget/internal/config/configs"
)

func TestNewSchedulerRegistersJobs(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := usecase.NewBudgetUseCase(memory.NewBudgetRepository(), log)

	s, err := NewScheduler(svc, log, configs.Sweep{
		DaypartingInterval: time.Minute,
		BudgetInterval:     time.Minute,
		JobTimeout:         time.Minute,
		RetentionDays:      90,
	})
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Stop()) }()

	names := make(map[string]bool)
	for _, j := range s.scheduler.Jobs() {
		names[j.Name()] = true
	}
	for _, want := range []string{
		"dayparting-sweep", "budget-sweep", "daily-reset", "monthly-reset", "spend-cleanup",
	} {
		assert.True(t, names[want], "job %s not registered", want)
	}
}

// TestRunSweepBoundsJobDuration: a sweep that hangs must be cancelled by
// the job timeout instead of blocking the scheduler forever.
func TestRunSweepBoundsJobDuration(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := usecase.NewBudgetUseCase(memory.NewBudgetRepository(), log)
	s, err := NewScheduler(svc, log, configs.Sweep{
		DaypartingInterval: time.Minute,
		BudgetInterval:     time.Minute,
		JobTimeout:         10 * time.Millisecond,
		RetentionDays:      90,
	})
	require.NoError(t, err)
	defer func() { _ = s.Stop() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.runSweep("stalling sweep", func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep was not cancelled by the job timeout")
	}
}
