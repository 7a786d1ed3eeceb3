package shop

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/obohub-backend/internal/identity"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"go.uber.org/multierr"
)

const DefaultIdleTimeout = 30 * time.Minute

// Registry keeps one Container per signed-in user. Containers share the
// store and listeners configured in opts. A container unused for longer than
// the idle timeout is evicted; the user's next request reloads it from the
// store.
type Registry struct {
	mu        sync.Mutex
	opts      Options
	idle      time.Duration
	clock     func() time.Time
	listeners []Listener
	sessions  map[string]*registryEntry
}

type registryEntry struct {
	container *Container
	lastSeen  time.Time
}

// NewRegistry validates opts by building a throwaway container.
func NewRegistry(opts Options, listeners ...Listener) (*Registry, error) {
	if _, err := New(opts); err != nil {
		return nil, err
	}
	idle := opts.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Registry{
		opts:      opts,
		idle:      idle,
		clock:     clock,
		listeners: listeners,
		sessions:  map[string]*registryEntry{},
	}, nil
}

// Session returns the container for the signed-in state, creating and
// loading it on first use. Idle containers of other users are evicted on the
// way.
func (r *Registry) Session(ctx context.Context, state identity.State) (*Container, error) {
	if !state.IsSignedIn() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to continue")
	}
	userID := state.UserID()
	now := r.clock()

	r.mu.Lock()
	r.evictIdleLocked(now, userID)
	entry, ok := r.sessions[userID]
	if !ok {
		c, err := New(r.opts)
		if err != nil {
			r.mu.Unlock()
			return nil, err
		}
		for _, l := range r.listeners {
			c.Subscribe(l)
		}
		entry = &registryEntry{container: c}
		r.sessions[userID] = entry
	}
	entry.lastSeen = now
	c := entry.container
	r.mu.Unlock()

	if err := c.SyncIdentity(ctx, state); err != nil {
		r.mu.Lock()
		if cur, ok := r.sessions[userID]; ok && cur.container == c {
			delete(r.sessions, userID)
		}
		r.mu.Unlock()
		r.reportSessions()
		return nil, err
	}
	r.reportSessions()
	return c, nil
}

// End logs the user out and drops their container. Unknown users are a no-op.
func (r *Registry) End(ctx context.Context, userID string) error {
	r.mu.Lock()
	entry, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	defer r.reportSessions()

	c := entry.container
	return multierr.Combine(
		c.Logout(ctx),
		c.SyncIdentity(ctx, identity.SignedOut()),
	)
}

// Sweep evicts every container idle for longer than the timeout and returns
// how many were dropped.
func (r *Registry) Sweep(ctx context.Context) int {
	r.mu.Lock()
	evicted := r.evictIdleLocked(r.clock(), "")
	r.mu.Unlock()

	if evicted > 0 {
		r.reportSessions()
		if r.opts.Logger != nil {
			r.opts.Logger.Debug(r.opts.Logger.WithField(ctx, "evicted", evicted), "shop.sessions_evicted")
		}
	}
	return evicted
}

// Run sweeps idle containers every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// evictIdleLocked drops idle entries other than keep. Evicted containers are
// left as they are: a request still holding one finishes against it, and
// everything it wrote is already in the store.
func (r *Registry) evictIdleLocked(now time.Time, keep string) int {
	evicted := 0
	for userID, entry := range r.sessions {
		if userID == keep || now.Sub(entry.lastSeen) <= r.idle {
			continue
		}
		delete(r.sessions, userID)
		evicted++
	}
	return evicted
}

// Len reports the number of live containers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) reportSessions() {
	r.opts.Metrics.SetActiveSessions(r.Len())
}
