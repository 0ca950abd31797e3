// Package credential caches the upstream access token and refreshes it on expiry.
package credential

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"stocker/internal/kis"
	"stocker/internal/ratelimit"
)

const (
	// DefaultSafetyMargin is subtracted from the issued lifetime so a token
	// is never presented right at its expiry.
	DefaultSafetyMargin = 60 * time.Second
	// DefaultMinInterval is the shortest gap between two issuance calls.
	DefaultMinInterval = time.Minute
	// DefaultIssueTimeout bounds one shared issuance, including the wait for
	// the issuance window.
	DefaultIssueTimeout = 90 * time.Second
)

// ErrMissingSecrets is wrapped by Error when the app key or secret is absent.
var ErrMissingSecrets = kis.ErrMissingSecrets

// Credential is a bearer token and the instant it stops being used.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// Valid reports whether the credential can still be presented at now.
func (c Credential) Valid(now time.Time) bool {
	return c.Token != "" && now.Before(c.ExpiresAt)
}

// Error is returned when no credential could be obtained.
type Error struct {
	Err error
}

func (e *Error) Error() string { return "credential: " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Issuer obtains a fresh token and its lifetime.
type Issuer interface {
	Issue(ctx context.Context) (token string, ttl time.Duration, err error)
}

// IssuerFunc adapts a function to Issuer.
type IssuerFunc func(ctx context.Context) (string, time.Duration, error)

func (f IssuerFunc) Issue(ctx context.Context) (string, time.Duration, error) { return f(ctx) }

// FromKIS adapts a KIS client to Issuer.
func FromKIS(c *kis.Client) Issuer {
	return IssuerFunc(func(ctx context.Context) (string, time.Duration, error) {
		tok, err := c.IssueToken(ctx)
		if err != nil {
			return "", 0, err
		}
		return tok.AccessToken, tok.TTL(), nil
	})
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSafetyMargin overrides DefaultSafetyMargin.
func WithSafetyMargin(d time.Duration) Option {
	return func(c *Cache) {
		if d >= 0 {
			c.margin = d
		}
	}
}

// WithMinInterval overrides DefaultMinInterval. Zero disables the gate.
func WithMinInterval(d time.Duration) Option {
	return func(c *Cache) { c.gate.Interval = d }
}

// WithIssueTimeout overrides DefaultIssueTimeout.
func WithIssueTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.issueTimeout = d
		}
	}
}

// WithStore persists refreshed credentials and seeds the cache from it.
func WithStore(s Store) Option {
	return func(c *Cache) { c.store = s }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// Cache holds at most one credential. Safe for concurrent use.
type Cache struct {
	issuer       Issuer
	margin       time.Duration
	issueTimeout time.Duration
	now          func() time.Time
	store        Store
	log          zerolog.Logger

	gate ratelimit.MinInterval
	sf   singleflight.Group

	loadOnce sync.Once

	mu  sync.RWMutex
	cur Credential
}

// New creates a Cache around issuer. A nil issuer makes every call fail
// with ErrMissingSecrets.
func New(issuer Issuer, opts ...Option) *Cache {
	c := &Cache{
		issuer:       issuer,
		margin:       DefaultSafetyMargin,
		issueTimeout: DefaultIssueTimeout,
		now:          time.Now,
		log:          zerolog.Nop(),
		gate:         ratelimit.MinInterval{Interval: DefaultMinInterval},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the cached credential while it is valid and refreshes it otherwise.
func (c *Cache) Get(ctx context.Context) (Credential, error) {
	c.loadOnce.Do(c.load)

	c.mu.RLock()
	cur := c.cur
	c.mu.RUnlock()
	if cur.Valid(c.now()) {
		return cur, nil
	}
	return c.Refresh(ctx)
}

// Refresh issues a new credential regardless of the cached one. Concurrent
// callers share a single issuance, which runs detached from any one caller:
// a caller whose ctx ends gets ctx.Err() while the others keep waiting.
func (c *Cache) Refresh(ctx context.Context) (Credential, error) {
	if c.issuer == nil {
		return Credential{}, &Error{Err: ErrMissingSecrets}
	}
	ch := c.sf.DoChan("refresh", func() (any, error) {
		ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.issueTimeout)
		defer cancel()
		return c.refresh(ictx)
	})
	select {
	case <-ctx.Done():
		return Credential{}, &Error{Err: ctx.Err()}
	case r := <-ch:
		if r.Err != nil {
			return Credential{}, r.Err
		}
		return r.Val.(Credential), nil
	}
}

func (c *Cache) refresh(ctx context.Context) (Credential, error) {
	if err := c.gate.Wait(ctx); err != nil {
		return Credential{}, &Error{Err: fmt.Errorf("waiting for issuance window: %w", err)}
	}
	token, ttl, err := c.issuer.Issue(ctx)
	c.gate.Mark()
	if err != nil {
		c.log.Error().Err(err).Msg("token issuance failed")
		if errors.Is(err, kis.ErrMissingSecrets) {
			return Credential{}, &Error{Err: ErrMissingSecrets}
		}
		return Credential{}, &Error{Err: err}
	}

	issuedAt := c.now()
	cred := Credential{Token: token, ExpiresAt: issuedAt.Add(ttl - c.margin)}

	c.mu.Lock()
	c.cur = cred
	c.mu.Unlock()

	c.log.Info().Time("expires_at", cred.ExpiresAt).Msg("token issued")

	if c.store != nil {
		if err := c.store.Save(State{Credential: cred, IssuedAt: issuedAt}); err != nil {
			c.log.Warn().Err(err).Msg("persisting token failed")
		}
	}
	return cred, nil
}

// load seeds the cache from the store once.
func (c *Cache) load() {
	if c.store == nil {
		return
	}
	st, err := c.store.Load()
	if err != nil {
		if !errors.Is(err, ErrNoState) {
			c.log.Warn().Err(err).Msg("loading persisted token failed")
		}
		return
	}
	if !st.IssuedAt.IsZero() {
		c.gate.MarkAt(st.IssuedAt)
	}
	if !st.Credential.Valid(c.now()) {
		return
	}
	c.mu.Lock()
	c.cur = st.Credential
	c.mu.Unlock()
	c.log.Debug().Time("expires_at", st.Credential.ExpiresAt).Msg("token restored")
}
