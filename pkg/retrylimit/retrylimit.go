// Package retrylimit combines an adaptive rate limiter with bounded retries.
// The limiter speeds up after successes and backs off when the server reports
// overload (429 or 5xx); WithRetry drives a request through both.
//
//	lim := retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)
//	err := retrylimit.WithRetry(ctx, func() error { return call(ctx) }, lim, log)
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// AdaptiveLimiter is safe for concurrent use.
type AdaptiveLimiter struct {
	mu        sync.RWMutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
	cooloff   time.Duration
}

// NewAdaptiveLimiter starts at initial requests per second and moves between
// min and max: +stepUp after a success, *stepDown after an overload.
func NewAdaptiveLimiter(initial, min, max, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if min <= 0 {
		min = 0.1
	}
	if max < min {
		max = min
	}
	initial = clamp(initial, min, max)
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, burstFor(initial)),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
		cooloff:  10 * time.Second,
	}
}

func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate unless an overload was seen recently.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > a.cooloff {
		a.setLimit(a.limiter.Limit() + a.stepUp)
	}
}

// RateLimited lowers the rate after an overload response.
func (a *AdaptiveLimiter) RateLimited() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.setLimit(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

func (a *AdaptiveLimiter) CurrentLimit() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) setLimit(l rate.Limit) {
	l = clamp(l, a.minLimit, a.maxLimit)
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
		a.limiter.SetBurst(burstFor(l))
	}
}

// HTTPError is implemented by errors that carry a response status.
type HTTPError interface {
	error
	StatusCode() int
}

// FatalError stops retries immediately.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// Fatal marks err as not worth retrying.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

type Config struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	RateLimitDelay time.Duration
	Multiplier     float64
	Jitter         bool
	OnRetry        func(attempt int, err error)
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		RateLimitDelay: time.Second,
		Multiplier:     2,
		Jitter:         true,
	}
}

// WithRetry runs fn with DefaultConfig.
func WithRetry(ctx context.Context, fn func() error, lim *AdaptiveLimiter, log zerolog.Logger) error {
	return WithRetryConfig(ctx, fn, lim, DefaultConfig(), log)
}

// WithRetryConfig runs fn until it succeeds, returns a FatalError, the
// context ends, or MaxAttempts is reached. The last error is returned
// wrapped.
func WithRetryConfig(ctx context.Context, fn func() error, lim *AdaptiveLimiter, cfg Config, log zerolog.Logger) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	delay := cfg.InitialDelay

	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lim != nil {
			if werr := lim.Wait(ctx); werr != nil {
				return werr
			}
		}

		err = fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			if attempt > 1 {
				log.Debug().Int("attempt", attempt).Msg("Request succeeded after retry")
			}
			return nil
		}

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return fatal.Err
		}
		if attempt == cfg.MaxAttempts {
			break
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		wait := delay
		switch {
		case IsRateLimited(err):
			if lim != nil {
				lim.RateLimited()
			}
			wait = cfg.RateLimitDelay
			log.Warn().Int("attempt", attempt).Float64("rps", limit(lim)).Msg("Rate limited by upstream")
		case IsServerError(err):
			if lim != nil {
				lim.RateLimited()
			}
			log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", wait).Msg("Upstream server error")
		default:
			log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", wait).Msg("Request failed")
		}

		if cfg.Jitter {
			wait = addJitter(wait)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return fmt.Errorf("after %d attempts: %w", cfg.MaxAttempts, err)
}

// IsRateLimited reports a 429 anywhere in err's chain.
func IsRateLimited(err error) bool {
	var h HTTPError
	return errors.As(err, &h) && h.StatusCode() == http.StatusTooManyRequests
}

// IsServerError reports a 5xx anywhere in err's chain.
func IsServerError(err error) bool {
	var h HTTPError
	return errors.As(err, &h) && h.StatusCode() >= 500 && h.StatusCode() < 600
}

func addJitter(d time.Duration) time.Duration {
	if d < 4 {
		return d
	}
	return d + rand.N(d/4)
}

func limit(lim *AdaptiveLimiter) float64 {
	if lim == nil {
		return 0
	}
	return lim.CurrentLimit()
}

func clamp(l, lo, hi rate.Limit) rate.Limit {
	return max(lo, min(l, hi))
}

func burstFor(l rate.Limit) int {
	return max(1, int(l))
}
