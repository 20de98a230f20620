package persist

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Runner flushes one collection to disk on a fixed interval. Each collection
// gets its own runner so their intervals can differ; a final flush happens on
// shutdown regardless of the ticker phase.
type Runner struct {
	name     string
	interval time.Duration
	flush    func(ctx context.Context) error
	clock    clockwork.Clock
	log      *zerolog.Logger
}

// NewRunner builds a flush loop for one collection.
func NewRunner(name string, interval time.Duration, flush func(ctx context.Context) error, clock clockwork.Clock, logger *zerolog.Logger) *Runner {
	return &Runner{name: name, interval: interval, flush: flush, clock: clock, log: logger}
}

// Run flushes until ctx is cancelled, then performs the shutdown flush with a
// fresh short-lived context.
func (r *Runner) Run(ctx context.Context) {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := r.flush(flushCtx); err != nil {
				r.log.Error().Err(err).Str("collection", r.name).Msg("final flush failed")
			} else {
				r.log.Info().Str("collection", r.name).Msg("final flush complete")
			}
			cancel()
			return
		case <-ticker.Chan():
			if err := r.flush(ctx); err != nil {
				r.log.Error().Err(err).Str("collection", r.name).Msg("periodic flush failed")
			}
		}
	}
}
