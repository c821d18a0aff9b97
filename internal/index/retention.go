package index

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RetentionStore deletes aged-out rows.
type RetentionStore interface {
	DeleteGamesOlderThan(threshold time.Time) (int, error)
	DeletePeriodsOlderThan(threshold time.Time) (int, error)
}

// RetentionConfig controls the retention loop.
type RetentionConfig struct {
	MaxAge   time.Duration // rows older than this are deleted; default 7 days
	Interval time.Duration // how often to sweep; default 1 hour
}

// Retention periodically deletes games and period cache rows that have not
// been refreshed within MaxAge.
type Retention struct {
	cfg   RetentionConfig
	store RetentionStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewRetention wires a retention sweeper.
func NewRetention(cfg RetentionConfig, s RetentionStore, logger zerolog.Logger) *Retention {
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 7 * 24 * time.Hour
	}
	if cfg.Interval == 0 {
		cfg.Interval = time.Hour
	}
	return &Retention{
		cfg:   cfg,
		store: s,
		log:   logger.With().Str("component", "retention").Logger(),
		now:   time.Now,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
func (r *Retention) Run(ctx context.Context) error {
	r.log.Info().Dur("max_age", r.cfg.MaxAge).Dur("interval", r.cfg.Interval).Msg("retention loop started")

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.RunOnce(); err != nil {
				r.log.Warn().Err(err).Msg("retention sweep failed")
			}
		}
	}
}

// RunOnce performs a single sweep.
func (r *Retention) RunOnce() error {
	threshold := r.now().UTC().Add(-r.cfg.MaxAge)

	games, err := r.store.DeleteGamesOlderThan(threshold)
	if err != nil {
		return err
	}
	periods, err := r.store.DeletePeriodsOlderThan(threshold)
	if err != nil {
		return err
	}
	if games > 0 || periods > 0 {
		r.log.Info().Int("games", games).Int("periods", periods).Msg("retention sweep deleted rows")
	}
	return nil
}
