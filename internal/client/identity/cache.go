// Package identity resolves the signed-in user and keeps the result in the
// durable local store for a bounded time.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/skincare/internal/client/models"
	"github.com/dmitrijs2005/skincare/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/skincare/internal/common"
	"github.com/dmitrijs2005/skincare/internal/logging"
)

// StoreKey is the local store entry holding the cached identity.
const StoreKey = "user"

const DefaultTTL = 10 * time.Minute

// Resolution outcomes reported to Observer.
const (
	OutcomeHit             = "hit"
	OutcomeResolved        = "resolved"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeError           = "error"
)

// Observer receives one outcome per Resolve call.
type Observer interface {
	IdentityResolved(outcome string)
}

// storedIdentity is the on-disk form of the cache entry; timestamp is Unix
// milliseconds.
type storedIdentity struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
}

// Cache answers "who is the current user" with at most one provider
// round-trip per TTL window.
type Cache struct {
	provider Provider
	repo     metadata.Repository
	log      logging.Logger
	observer Observer
	ttl      time.Duration
	now      func() time.Time

	// sem admits one resolution at a time; waiting on it honours ctx.
	sem chan struct{}
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Cache) { c.log = l }
}

func WithObserver(o Observer) Option {
	return func(c *Cache) { c.observer = o }
}

func NewCache(provider Provider, repo metadata.Repository, opts ...Option) *Cache {
	c := &Cache{
		provider: provider,
		repo:     repo,
		log:      logging.Discard(),
		ttl:      DefaultTTL,
		now:      time.Now,
		sem:      make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Resolve returns the cached identity while it is younger than the TTL and
// otherwise asks the provider once. It fails with common.ErrUnauthenticated
// when the provider reports nobody signed in.
func (c *Cache) Resolve(ctx context.Context) (*models.Identity, error) {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.sem }()

	cached, err := c.Stored(ctx)
	if err != nil {
		c.log.Warn(ctx, "failed to read cached identity", "err", err)
		cached = nil
	}
	if cached.FreshAt(c.now(), c.ttl) {
		c.observe(OutcomeHit)
		return cached, nil
	}

	id, err := c.resolveFromProvider(ctx)
	switch {
	case err == nil:
		c.observe(OutcomeResolved)
	case errors.Is(err, common.ErrUnauthenticated):
		c.observe(OutcomeUnauthenticated)
	default:
		c.observe(OutcomeError)
	}
	return id, err
}

func (c *Cache) resolveFromProvider(ctx context.Context) (*models.Identity, error) {
	sub, err := c.provider.Subscribe(ctx)
	if err != nil {
		return nil, fmt.Errorf("identity provider: %w", err)
	}
	defer sub.Release()

	var p *Principal
	select {
	case got, ok := <-sub.Events():
		if ok {
			p = got
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if p == nil || p.UID == "" {
		return nil, common.ErrUnauthenticated
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := &models.Identity{UID: p.UID, DisplayName: p.DisplayName, ResolvedAt: c.now()}
	if err := c.store(ctx, id); err != nil {
		// The identity is still valid for this caller; the next Resolve
		// simply asks the provider again.
		c.log.Warn(ctx, "failed to persist identity", "uid", id.UID, "err", err)
	}
	return id, nil
}

func (c *Cache) store(ctx context.Context, id *models.Identity) error {
	b, err := json.Marshal(storedIdentity{
		UID:       id.UID,
		Name:      id.DisplayName,
		Timestamp: id.ResolvedAt.UnixMilli(),
	})
	if err != nil {
		return err
	}
	return c.repo.Set(ctx, StoreKey, b)
}

// Stored returns the persisted identity regardless of its age, or nil when
// there is none. An unreadable entry is treated as absent.
func (c *Cache) Stored(ctx context.Context) (*models.Identity, error) {
	b, err := c.repo.Get(ctx, StoreKey)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}

	var s storedIdentity
	if err := json.Unmarshal(b, &s); err != nil || s.UID == "" {
		c.log.Warn(ctx, "ignoring malformed identity entry", "err", err)
		return nil, nil
	}

	return &models.Identity{
		UID:         s.UID,
		DisplayName: s.Name,
		ResolvedAt:  time.UnixMilli(s.Timestamp),
	}, nil
}

// SignOut signs out at the provider and wipes the local store, cached
// identity included. The store is cleared even if the provider call fails.
func (c *Cache) SignOut(ctx context.Context) error {
	perr := c.provider.SignOut(ctx)
	if err := c.repo.Clear(ctx); err != nil {
		return err
	}
	return perr
}

func (c *Cache) observe(outcome string) {
	if c.observer != nil {
		c.observer.IdentityResolved(outcome)
	}
}
