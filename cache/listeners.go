package cache

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Listener receives change notifications. Handlers run synchronously on the
// goroutine that performed the mutation; a handler that needs to touch
// presentation state must redispatch itself.
type Listener func(Change)

// SubscriptionID identifies a registered listener.
type SubscriptionID = uuid.UUID

type subscriber struct {
	id uuid.UUID
	fn Listener
}

// registry holds subscribers and dispatches tagged changes in subscription
// order. A panicking handler is isolated so the remaining handlers still run.
type registry struct {
	mu   sync.RWMutex
	subs []subscriber
	log  zerolog.Logger
}

func newRegistry(log zerolog.Logger) *registry {
	return &registry{log: log}
}

func (r *registry) subscribe(fn Listener) uuid.UUID {
	id := uuid.New()
	r.mu.Lock()
	r.subs = append(r.subs, subscriber{id: id, fn: fn})
	r.mu.Unlock()
	return id
}

func (r *registry) unsubscribe(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.subs {
		if s.id == id {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			return true
		}
	}
	return false
}

func (r *registry) notify(c Change) {
	r.mu.RLock()
	subs := make([]subscriber, len(r.subs))
	copy(subs, r.subs)
	r.mu.RUnlock()

	for _, s := range subs {
		r.dispatch(s, c)
	}
}

func (r *registry) dispatch(s subscriber, c Change) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().
				Str("subscription", s.id.String()).
				Str("change", c.String()).
				Interface("panic", rec).
				Msg("listener panicked")
		}
	}()
	s.fn(c)
}
