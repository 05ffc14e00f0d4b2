package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"watchparty/internal/store"
)

// Reaper periodically removes participant rows whose last_active fell behind
// the threshold. Disconnects are not always observed, so the store
// accumulates orphans without it. The directory never needs reaping: it only
// ever holds live connections.
type Reaper struct {
	Store     store.Store
	Interval  time.Duration
	Threshold time.Duration
}

func (r *Reaper) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.reaper").Msg("reaper stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep runs one pass. Store errors are logged and the next tick retries.
func (r *Reaper) Sweep(ctx context.Context) {
	threshold := r.Threshold
	if threshold <= 0 {
		threshold = 5 * time.Minute
	}
	n, err := r.Store.RemoveStaleParticipants(ctx, time.Now().Add(-threshold))
	if err != nil {
		log.Error().Err(err).Str("module", "app.reaper").Msg("sweep failed")
		return
	}
	if n > 0 {
		log.Info().Str("module", "app.reaper").Int64("removed", n).Msg("cleaned up inactive participants")
	}
}
