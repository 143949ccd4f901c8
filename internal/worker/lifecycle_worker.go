package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLifecycleInterval is the reference cadence for exam promotion.
const DefaultLifecycleInterval = 60 * time.Second

// LifecycleStore is the set-based promotion surface of the exam registry.
// Both operations are idempotent: re-running finds nothing left to promote.
type LifecycleStore interface {
	ActivateDue(ctx context.Context, now time.Time) (int64, error)
	CompleteDue(ctx context.Context, now time.Time) (int64, error)
}

// LifecycleWorker promotes exams between statuses on wall-clock time,
// independent of any student activity: scheduled exams whose start time has
// passed become active, active exams whose end time has passed become
// completed. A failed tick is logged and retried on the next interval; it
// never stops the loop.
type LifecycleWorker struct {
	store    LifecycleStore
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewLifecycleWorker creates a new LifecycleWorker. A non-positive interval
// falls back to DefaultLifecycleInterval.
func NewLifecycleWorker(store LifecycleStore, interval time.Duration, log zerolog.Logger) *LifecycleWorker {
	if interval <= 0 {
		interval = DefaultLifecycleInterval
	}
	return &LifecycleWorker{
		store:    store,
		interval: interval,
		now:      time.Now,
		log:      log.With().Str("component", "lifecycle_worker").Logger(),
	}
}

// Start begins the promotion loop: one eager tick at startup, then one per
// interval until ctx is cancelled. Call in a goroutine.
func (w *LifecycleWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("LifecycleWorker started")

	w.Tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("LifecycleWorker stopped")
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs one promotion pass. The two promotions are independent: a
// failure in one is logged and does not block the other, and a tick that
// finds zero eligible exams is a normal no-op.
func (w *LifecycleWorker) Tick(ctx context.Context) {
	now := w.now()

	activated, err := w.store.ActivateDue(ctx, now)
	if err != nil {
		w.log.Error().Err(err).Msg("Failed to activate scheduled exams, retrying next tick")
	} else if activated > 0 {
		w.log.Info().Int64("count", activated).Msg("Auto-activated exams")
	}

	completed, err := w.store.CompleteDue(ctx, now)
	if err != nil {
		w.log.Error().Err(err).Msg("Failed to complete expired exams, retrying next tick")
	} else if completed > 0 {
		w.log.Info().Int64("count", completed).Msg("Auto-completed exams")
	}
}
