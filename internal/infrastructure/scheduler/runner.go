package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/lumenbank/mortgage-engine/internal/application/dto"
	"github.com/lumenbank/mortgage-engine/internal/application/usecase"
	"github.com/lumenbank/mortgage-engine/internal/domain/port"
	"github.com/lumenbank/mortgage-engine/pkg/observability"
)

// Runner polls the schedule store and fires due ticks through the scheduled
// tick usecase. A failed tick is logged and retried on the next poll; the
// schedule row only moves once the tick committed.
type Runner struct {
	schedules port.ScheduleStore
	tick      *usecase.RunScheduledTickUseCase
	metrics   *observability.EngineMetrics
	logger    *slog.Logger

	interval  time.Duration
	batchSize int
}

// NewRunner creates a schedule runner.
func NewRunner(
	schedules port.ScheduleStore,
	tick *usecase.RunScheduledTickUseCase,
	metrics *observability.EngineMetrics,
	logger *slog.Logger,
	interval time.Duration,
	batchSize int,
) *Runner {
	return &Runner{
		schedules: schedules,
		tick:      tick,
		metrics:   metrics,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run polls until the context is cancelled.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("schedule runner started", "interval", r.interval, "batch_size", r.batchSize)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("schedule runner stopped")
			return
		case <-ticker.C:
			r.pass(ctx)
		}
	}
}

// pass executes one poll.
func (r *Runner) pass(ctx context.Context) {
	now := time.Now().UTC()
	due, err := r.schedules.FindDue(ctx, now, r.batchSize)
	if err != nil {
		r.logger.Error("find due schedules", "error", err)
		return
	}

	for _, entry := range due {
		kind := string(entry.Event.Kind)
		out, err := r.tick.Execute(ctx, dto.RunScheduledTickInput{
			AccountID: entry.AccountID,
			Kind:      kind,
			// Ticks run at their scheduled time so a delayed runner still
			// produces the postings the schedule promised.
			EffectiveAt: entry.Event.NextRunAt,
		})
		if err != nil {
			r.logger.Error("execute scheduled tick",
				"account_id", entry.AccountID,
				"kind", kind,
				"error", err,
			)
			continue
		}

		r.metrics.Invocations.WithLabelValues(kind).Inc()
		r.metrics.PostingsEmitted.WithLabelValues(kind).Add(float64(out.PostingCount))
	}
}
