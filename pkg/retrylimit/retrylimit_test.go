package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr int

func (s statusErr) Error() string   { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) StatusCode() int { return int(s) }

func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, RateLimitDelay: time.Millisecond, Multiplier: 1}
}

func TestRetrySucceedsAfterServerError(t *testing.T) {
	lim := NewAdaptiveLimiter(100, 1, 100, 1, 0.5)
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		if calls == 1 {
			return statusErr(502)
		}
		return nil
	}, lim, fastConfig(3), zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 50.0, lim.CurrentLimit(), "server error halves the rate")
}

func TestRetryStopsOnFatal(t *testing.T) {
	calls := 0
	boom := errors.New("bad request")
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return Fatal(boom)
	}, nil, fastConfig(5), zerolog.Nop())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return statusErr(429)
	}, nil, fastConfig(3), zerolog.Nop())

	assert.Equal(t, 3, calls)
	assert.True(t, IsRateLimited(err))
	assert.ErrorContains(t, err, "after 3 attempts")
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig(5)
	cfg.InitialDelay = time.Hour
	err := WithRetryConfig(ctx, func() error {
		cancel()
		return errors.New("flaky")
	}, nil, cfg, zerolog.Nop())

	assert.ErrorIs(t, err, context.Canceled)
}

func TestLimiterBounds(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 5, 2, 0.1)
	lim.RateLimited()
	assert.Equal(t, 1.0, lim.CurrentLimit())

	lim.cooloff = 0
	lim.lastError = time.Time{}
	lim.Success()
	lim.Success()
	lim.Success()
	assert.Equal(t, 5.0, lim.CurrentLimit())
}

func TestClassifiers(t *testing.T) {
	wrapped := fmt.Errorf("call: %w", statusErr(503))
	assert.True(t, IsServerError(wrapped))
	assert.False(t, IsRateLimited(wrapped))
	assert.False(t, IsServerError(errors.New("plain")))
}
