package phttp

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"
)

// Store tracks request counts for the rate-limit middleware. Implementations
// must be safe for concurrent use; the in-process ones below guard their
// read-modify-write with a mutex. A remote store (Redis and friends) plugs in
// here, and its I/O waits must not block other requests' pipelines.
type Store interface {
	// Allow records one request for key against a budget of max requests
	// per window and reports whether it fits.
	Allow(key string, max int, window time.Duration) (bool, error)
}

// RateLimitConfig is the recognized configuration surface of the rate-limit
// middleware.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration

	// LimitByUser keys the budget on the authenticated token stored in
	// shared context data instead of the client address. Either way an
	// absent identity falls back to the "unknown" bucket.
	LimitByUser bool

	// Store defaults to a fresh [FixedWindowStore].
	Store Store
}

// RateLimit returns the limiting middleware at [PriorityRateLimit], or at
// [PriorityRateLimitByUser] when the budget is keyed on the authenticated
// user: the token only exists in shared data once the auth stage has run.
// Exceeding the budget short-circuits with 429 plus X-RateLimit-Limit,
// X-RateLimit-Window and Retry-After headers. A store failure is not a
// user-facing condition and aborts the chain with an internal error instead.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Store == nil {
		cfg.Store = NewFixedWindowStore()
	}

	priority := PriorityRateLimit
	if cfg.LimitByUser {
		priority = PriorityRateLimitByUser
	}

	windowSecs := strconv.Itoa(int(cfg.Window / time.Second))

	return NewMiddlewareWithPriority("rate_limit", priority,
		func(ctx *Context, next Next) (*Response, error) {
			key := limitKey(ctx, cfg.LimitByUser)

			ok, err := cfg.Store.Allow(key, cfg.MaxRequests, cfg.Window)
			if err != nil {
				return nil, NewError(KindInternal, errors.Wrap(err, "rate limit store"))
			}

			if !ok {
				resp := jsonError(http.StatusTooManyRequests, "rate limit exceeded")
				resp.SetHeader("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
				resp.SetHeader("X-RateLimit-Window", windowSecs)
				resp.SetHeader("Retry-After", windowSecs)

				return resp, nil
			}

			return next.Handle(ctx)
		})
}

// limitKey picks the identity the budget is tracked against: authenticated
// user when configured and available, client IP otherwise, and the shared
// "unknown" bucket as the last resort.
func limitKey(ctx *Context, byUser bool) string {
	if byUser {
		if token, ok := ctx.Get(SharedKeyToken); ok && token != "" {
			return "user:" + token
		}
	}

	if addr := ctx.Request.RemoteAddr(); addr != "" {
		if host, _, err := net.SplitHostPort(addr); err == nil {
			return "ip:" + host
		}

		return "ip:" + addr
	}

	return "unknown"
}

type windowEntry struct {
	count   int
	started time.Time
}

// FixedWindowStore counts requests per key in fixed windows, in memory. The
// window restarts when the previous one has fully elapsed, so a budget of
// (max, window) deterministically rejects request max+1 within one window.
type FixedWindowStore struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	now     func() time.Time
}

// NewFixedWindowStore inits an empty store.
func NewFixedWindowStore() *FixedWindowStore {
	return &FixedWindowStore{
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// Allow implements [Store].
func (s *FixedWindowStore) Allow(key string, max int, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	e, ok := s.entries[key]
	if !ok || now.Sub(e.started) >= window {
		e = &windowEntry{started: now}
		s.entries[key] = e
	}

	e.count++

	return e.count <= max, nil
}

// Prune evicts keys whose window started before the cutoff. Idle keys linger
// until pruned; callers that track many distinct identities should run this
// periodically.
func (s *FixedWindowStore) Prune(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if e.started.Before(cutoff) {
			delete(s.entries, key)
		}
	}
}

// TokenBucketStore is an alternative [Store] that smooths the budget into a
// token bucket refilling at max/window, with a burst ceiling of max. Counting
// is approximate with respect to window boundaries; the fixed-window store is
// the deterministic choice.
type TokenBucketStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewTokenBucketStore inits an empty store.
func NewTokenBucketStore() *TokenBucketStore {
	return &TokenBucketStore{limiters: make(map[string]*rate.Limiter)}
}

// Allow implements [Store].
func (s *TokenBucketStore) Allow(key string, max int, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Limit(float64(max)/window.Seconds()), max)
		s.limiters[key] = l
	}

	return l.Allow(), nil
}
