// Package idp is the client's identity provider: it verifies provider
// tokens, exchanges them with the backend for the canonical user id and
// publishes sign-in state to subscribers.
package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/skincare/internal/client/identity"
	"github.com/dmitrijs2005/skincare/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/skincare/internal/common"
)

// SessionKey is the local store entry holding the signed-in provider session.
const SessionKey = "provider_session"

// Exchanger turns a verified provider token into the backend's user id.
type Exchanger interface {
	ExchangeCredential(ctx context.Context, providerToken string) (string, error)
}

// Codec encodes the saved session before it reaches the store.
type Codec interface {
	Seal(v any) ([]byte, error)
	Open(b []byte, v any) error
}

type jsonCodec struct{}

func (jsonCodec) Seal(v any) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) Open(b []byte, v any) error { return json.Unmarshal(b, v) }

type Option func(*Provider)

// WithCodec replaces the plain JSON encoding of the saved session, for
// example with a cryptox.Sealer.
func WithCodec(c Codec) Option {
	return func(p *Provider) { p.codec = c }
}

type savedSession struct {
	Token string `json:"token"`
	UID   string `json:"uid"`
	Name  string `json:"name"`
}

// Provider keeps the current principal and fans state changes out to
// subscribers.
type Provider struct {
	verifier  Verifier
	exchanger Exchanger
	repo      metadata.Repository
	codec     Codec

	mu      sync.Mutex
	token   string
	current *identity.Principal
	subs    map[*subscription]struct{}
}

// NewProvider builds a provider. repo may be nil, in which case the
// sign-in does not survive a restart.
func NewProvider(verifier Verifier, exchanger Exchanger, repo metadata.Repository, opts ...Option) *Provider {
	p := &Provider{
		verifier:  verifier,
		exchanger: exchanger,
		repo:      repo,
		codec:     jsonCodec{},
		subs:      make(map[*subscription]struct{}),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// SignIn verifies raw, exchanges it with the backend and publishes the
// resulting principal.
func (p *Provider) SignIn(ctx context.Context, raw string) (*identity.Principal, error) {
	claims, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthenticated, err)
	}

	uid, err := p.exchanger.ExchangeCredential(ctx, raw)
	if err != nil {
		return nil, err
	}

	principal := &identity.Principal{UID: uid, DisplayName: claims.Name}

	if p.repo != nil {
		b, err := p.codec.Seal(savedSession{Token: raw, UID: uid, Name: claims.Name})
		if err != nil {
			return nil, err
		}
		if err := p.repo.Set(ctx, SessionKey, b); err != nil {
			return nil, err
		}
	}

	p.mu.Lock()
	p.token = raw
	p.current = principal
	p.publishLocked()
	p.mu.Unlock()

	return principal, nil
}

// Restore reloads a saved sign-in. The token is re-verified locally, so an
// expired one is dropped instead of restored.
func (p *Provider) Restore(ctx context.Context) error {
	if p.repo == nil {
		return nil
	}
	b, err := p.repo.Get(ctx, SessionKey)
	if err != nil || b == nil {
		return err
	}

	var s savedSession
	if err := p.codec.Open(b, &s); err != nil || s.UID == "" {
		return p.repo.Delete(ctx, SessionKey)
	}
	if _, err := p.verifier.Verify(ctx, s.Token); err != nil {
		return p.repo.Delete(ctx, SessionKey)
	}

	p.mu.Lock()
	p.token = s.Token
	p.current = &identity.Principal{UID: s.UID, DisplayName: s.Name}
	p.publishLocked()
	p.mu.Unlock()
	return nil
}

// Token returns the raw provider token, or "" when signed out.
func (p *Provider) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}

// Current returns the signed-in principal, or nil.
func (p *Provider) Current() *identity.Principal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.token = ""
	p.current = nil
	p.publishLocked()
	p.mu.Unlock()

	if p.repo != nil {
		return p.repo.Delete(ctx, SessionKey)
	}
	return nil
}

// Subscribe returns a subscription whose first event is the current state.
// Slow subscribers only ever see the latest state.
func (p *Provider) Subscribe(_ context.Context) (identity.Subscription, error) {
	s := &subscription{ch: make(chan *identity.Principal, 1), owner: p}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs[s] = struct{}{}
	s.ch <- p.current
	return s, nil
}

// publishLocked must be called with p.mu held.
func (p *Provider) publishLocked() {
	for s := range p.subs {
		select {
		case <-s.ch:
		default:
		}
		s.ch <- p.current
	}
}

func (p *Provider) subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

type subscription struct {
	ch    chan *identity.Principal
	owner *Provider
	once  sync.Once
}

func (s *subscription) Events() <-chan *identity.Principal { return s.ch }

func (s *subscription) Release() {
	s.once.Do(func() {
		s.owner.mu.Lock()
		delete(s.owner.subs, s)
		close(s.ch)
		s.owner.mu.Unlock()
	})
}

var _ identity.Provider = (*Provider)(nil)
