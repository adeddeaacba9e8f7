// Package janitor clears expired password-reset credentials on a schedule.
// Validation already treats expired tokens as absent; the purge just keeps
// stale hashes from accumulating in the users table.
package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abakirov/storefront/internal/metrics"
	"github.com/robfig/cron/v3"
)

// tokenPurger is the one repository method the janitor needs.
// Defined here (point of use) so tests can inject a fake.
type tokenPurger interface {
	PurgeExpiredTokens(ctx context.Context, now time.Time) (int, error)
}

type Janitor struct {
	users    tokenPurger
	logger   *slog.Logger
	schedule string
	now      func() time.Time
}

func New(users tokenPurger, logger *slog.Logger, schedule string) *Janitor {
	return &Janitor{
		users:    users,
		logger:   logger.With("component", "janitor"),
		schedule: schedule,
		now:      time.Now,
	}
}

// Start runs purge cycles per the cron schedule until ctx is cancelled.
// It blocks; run it in its own goroutine or as the main loop of a binary.
func (j *Janitor) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(j.schedule, func() { j.runCycle(ctx) }); err != nil {
		return fmt.Errorf("invalid purge schedule %q: %w", j.schedule, err)
	}

	j.logger.Info("janitor started", "schedule", j.schedule)
	c.Start()

	<-ctx.Done()
	// Let an in-flight cycle finish before reporting shutdown.
	<-c.Stop().Done()
	j.logger.Info("janitor stopped")
	return nil
}

func (j *Janitor) runCycle(ctx context.Context) {
	start := time.Now()

	cycleCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	purged, err := j.users.PurgeExpiredTokens(cycleCtx, j.now())
	if err != nil {
		j.logger.Error("purge expired tokens", "error", err)
		return
	}

	metrics.ResetTokensPurgedTotal.Add(float64(purged))
	metrics.JanitorCycleDuration.Observe(time.Since(start).Seconds())

	if purged > 0 {
		j.logger.Info("purged expired reset tokens", "count", purged)
	}
}
