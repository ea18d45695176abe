package client

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rbsteinm/SmartMap2/cache"
	"github.com/rbsteinm/SmartMap2/remote"
)

// Refresher polls friend positions and folds them into the cache, so the
// map keeps moving while the app is in the foreground.
type Refresher struct {
	cache    *cache.Cache
	remote   remote.Service
	log      zerolog.Logger
	interval time.Duration
}

// NewRefresher builds a position refresher polling at the given interval.
func NewRefresher(c *cache.Cache, rc remote.Service, interval time.Duration, log zerolog.Logger) *Refresher {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Refresher{
		cache:    c,
		remote:   rc,
		log:      log.With().Str("component", "refresher").Logger(),
		interval: interval,
	}
}

// Run polls until ctx is canceled. Failed polls are logged and skipped;
// the next tick tries again.
func (r *Refresher) Run(ctx context.Context) error {
	r.log.Info().Dur("interval", r.interval).Msg("position refresher starting")
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("position refresher stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := r.refresh(ctx); err != nil {
				r.log.Warn().Err(err).Msg("position refresh failed")
			}
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) error {
	snaps, err := r.remote.FriendsPositions(ctx)
	if err != nil {
		return err
	}
	r.cache.SetFriends(ctx, snaps)
	r.log.Debug().Int("friends", len(snaps)).Msg("friend positions refreshed")
	return nil
}

// Refresher returns a position refresher bound to this client's cache and
// remote, polling at the given interval.
func (c *Client) Refresher(interval time.Duration) *Refresher {
	return NewRefresher(c.cache, c.remote, interval, c.log)
}
