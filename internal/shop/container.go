// Package shop holds the signed-in shopper's commerce state and keeps it in
// sync with the per-user document store.
//
// Every mutation stages a copy of the affected collections, writes them to
// the store, and only then swaps them into memory. A failed write leaves the
// in-memory state untouched.
package shop

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/obohub-backend/internal/catalog"
	"github.com/angelmondragon/obohub-backend/internal/identity"
	"github.com/angelmondragon/obohub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/obohub-backend/pkg/errors"
	"github.com/angelmondragon/obohub-backend/pkg/kvstore"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
	"github.com/angelmondragon/obohub-backend/pkg/metrics"
)

const (
	welcomeTitle   = "Welcome to OBO HUB!"
	welcomeMessage = "Start shopping for authentic products"
)

// Options configures a Container. Store is required.
type Options struct {
	Store      kvstore.Store
	Logger     *logger.Logger
	Metrics    *metrics.ShopMetrics
	SignOut    identity.SignOuter
	Clock      func() time.Time
	PromoCodes []PromoCode
	// IdleTimeout bounds how long a Registry keeps an unused container.
	// Zero means DefaultIdleTimeout.
	IdleTimeout time.Duration
}

// Container is the single writer for one shopper's state.
type Container struct {
	mu        sync.Mutex
	store     kvstore.Store
	logg      *logger.Logger
	metrics   *metrics.ShopMetrics
	signOut   identity.SignOuter
	clock     func() time.Time
	ids       *idSource
	promos    []PromoCode
	st        snapshot
	listeners []Listener
}

type snapshot struct {
	user          *UserProfile
	cart          []CartLine
	wishlist      []catalog.Product
	orders        []Order
	returns       []ReturnRequest
	notifications []Notification
	promo         *PromoCode
}

// New builds an empty, signed-out container.
func New(opts Options) (*Container, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("shop: store is required")
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	promos := opts.PromoCodes
	if len(promos) == 0 {
		promos = DefaultPromoCodes()
	}
	return &Container{
		store:   opts.Store,
		logg:    logg,
		metrics: opts.Metrics,
		signOut: opts.SignOut,
		clock:   clock,
		ids:     newIDSource(clock),
		promos:  promos,
	}, nil
}

// Subscribe registers l for every future change.
func (c *Container) Subscribe(l Listener) {
	if l == nil {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// SyncIdentity reacts to the identity provider. Signing out clears memory
// (never storage). Signing in as a different user replaces every collection
// with that user's stored documents; missing documents load as empty, and a
// first sign-in creates the profile and a welcome notification.
func (c *Container) SyncIdentity(ctx context.Context, state identity.State) error {
	c.mu.Lock()
	prev := c.st.userID()

	if !state.IsSignedIn() {
		if prev == "" {
			c.mu.Unlock()
			return nil
		}
		c.st = snapshot{}
		listeners := c.listenersLocked()
		c.mu.Unlock()
		c.emit(ctx, listeners, prev, KindSession)
		return nil
	}

	userID := state.UserID()
	if prev == userID {
		c.mu.Unlock()
		return nil
	}

	// Nothing of the previous user may survive a failed switch.
	c.st = snapshot{}

	next, created, err := c.load(ctx, state)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if created {
		if err := c.persist(ctx, next, []Kind{KindUser, KindNotifications}); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	c.st = next
	listeners := c.listenersLocked()
	c.mu.Unlock()

	ctx = c.logg.WithFields(ctx, map[string]any{"user_id": userID, "new_user": created})
	c.logg.Info(ctx, "shop.session.loaded")
	c.emit(ctx, listeners, userID, KindSession)
	return nil
}

func (c *Container) load(ctx context.Context, state identity.State) (snapshot, bool, error) {
	userID := state.UserID()
	var next snapshot

	var profile UserProfile
	found, err := kvstore.Load(ctx, c.store, kvstore.Key(kvstore.KindUser, userID), &profile)
	if err != nil {
		return snapshot{}, false, err
	}

	targets := []struct {
		kind kvstore.Kind
		dst  any
	}{
		{kvstore.KindCart, &next.cart},
		{kvstore.KindWishlist, &next.wishlist},
		{kvstore.KindOrders, &next.orders},
		{kvstore.KindReturns, &next.returns},
		{kvstore.KindNotifications, &next.notifications},
	}
	for _, t := range targets {
		if _, err := kvstore.Load(ctx, c.store, kvstore.Key(t.kind, userID), t.dst); err != nil {
			return snapshot{}, false, err
		}
	}

	if !found {
		p := state.Profile
		profile = UserProfile{
			ID:        userID,
			Name:      p.DisplayName(),
			Email:     strings.TrimSpace(p.Email),
			Phone:     p.Phone,
			Addresses: []Address{},
		}
		c.notify(&next, welcomeTitle, welcomeMessage, enums.NotificationTypeInfo)
	}
	profile.ID = userID
	next.user = &profile
	return next, !found, nil
}

// Logout signals the end of the session to listeners and the identity
// provider. Memory is cleared by the follow-up SyncIdentity with a
// signed-out state.
func (c *Container) Logout(ctx context.Context) error {
	c.mu.Lock()
	userID := c.st.userID()
	listeners := c.listenersLocked()
	c.mu.Unlock()

	if userID == "" {
		return nil
	}
	c.emit(ctx, listeners, userID, KindLogout)
	if c.signOut != nil {
		return c.signOut.SignOut(ctx)
	}
	return nil
}

// mutate runs fn against a private copy of the state. fn returns the kinds
// it changed; nothing is written or published when that list is empty.
func (c *Container) mutate(ctx context.Context, fn func(next *snapshot) ([]Kind, error)) error {
	c.mu.Lock()
	if c.st.user == nil {
		c.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to continue")
	}

	next := c.st.clone()
	kinds, err := fn(&next)
	if err != nil || len(kinds) == 0 {
		c.mu.Unlock()
		return err
	}
	if err := c.persist(ctx, next, kinds); err != nil {
		c.mu.Unlock()
		return err
	}
	c.st = next
	userID := next.user.ID
	listeners := c.listenersLocked()
	c.mu.Unlock()

	c.emit(ctx, listeners, userID, kinds...)
	return nil
}

func (c *Container) persist(ctx context.Context, next snapshot, kinds []Kind) error {
	entries := make(map[string]string, len(kinds))
	labels := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		storeKind, ok := storeKinds[kind]
		if !ok {
			continue
		}
		key := kvstore.Key(storeKind, next.user.ID)
		raw, err := kvstore.Encode(key, next.document(kind))
		if err != nil {
			return err
		}
		entries[key] = raw
		labels = append(labels, string(kind))
	}
	if len(entries) == 0 {
		return nil
	}

	start := time.Now()
	err := c.store.SetMany(ctx, entries)
	c.metrics.ObservePersist(strings.Join(labels, ","), time.Since(start), err)
	if err != nil {
		ctx = c.logg.WithFields(ctx, map[string]any{"user_id": next.user.ID, "kinds": labels})
		c.logg.Error(ctx, "shop.persist.failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not save shop state")
	}
	return nil
}

func (c *Container) listenersLocked() []Listener {
	out := make([]Listener, len(c.listeners))
	copy(out, c.listeners)
	return out
}

func (c *Container) emit(ctx context.Context, listeners []Listener, userID string, kinds ...Kind) {
	for _, kind := range kinds {
		if kind.Persisted() {
			c.metrics.IncChange(string(kind))
		}
		change := Change{UserID: userID, Kind: kind}
		for _, l := range listeners {
			l(ctx, change)
		}
	}
}

func (s snapshot) userID() string {
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

func (s snapshot) clone() snapshot {
	out := snapshot{
		cart:          cloneSlice(s.cart),
		wishlist:      cloneSlice(s.wishlist),
		orders:        cloneSlice(s.orders),
		returns:       cloneSlice(s.returns),
		notifications: cloneSlice(s.notifications),
		promo:         s.promo,
	}
	if s.user != nil {
		u := *s.user
		u.Addresses = cloneSlice(s.user.Addresses)
		out.user = &u
	}
	return out
}

func (s snapshot) document(kind Kind) any {
	switch kind {
	case KindCart:
		return orEmpty(s.cart)
	case KindWishlist:
		return orEmpty(s.wishlist)
	case KindOrders:
		return orEmpty(s.orders)
	case KindReturns:
		return orEmpty(s.returns)
	case KindNotifications:
		return orEmpty(s.notifications)
	case KindUser:
		u := *s.user
		u.Addresses = orEmpty(u.Addresses)
		return u
	}
	return nil
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
