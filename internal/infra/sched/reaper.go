package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"scenario-ai-service/internal/domain/ports/repository"
	"scenario-ai-service/internal/infra/metrics"
)

// Reaper periodically evicts job records older than the TTL, regardless of
// status. In-flight jobs simply vanish; their late writes are no-ops. This
// bounds memory since the store is process-local and non-persistent.
type Reaper struct {
	interval time.Duration
	ttl      time.Duration
	store    repository.JobStore
	log      *zerolog.Logger
}

func NewReaper(interval, ttl time.Duration, store repository.JobStore, logger *zerolog.Logger) *Reaper {
	reapLog := logger.With().Str("component", "Reaper").Logger()
	return &Reaper{
		interval: interval,
		ttl:      ttl,
		store:    store,
		log:      &reapLog,
	}
}

func (r *Reaper) Run(ctx context.Context) error {
	r.log.Info().Dur("interval", r.interval).Dur("ttl", r.ttl).Msg("Starting job reaper")
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("Stopping job reaper")
			return ctx.Err()
		case <-ticker.C:
			n := r.store.PurgeOlderThan(time.Now().Add(-r.ttl))
			if n > 0 {
				metrics.AddJobsReaped(n)
				r.log.Info().Int("count", n).Msg("aged-out jobs evicted")
			}
		}
	}
}
