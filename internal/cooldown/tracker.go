// Package cooldown tracks per-user, per-command wait periods.
package cooldown

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"k8s.io/utils/clock"
)

type key struct {
	userID  string
	command string
}

// Tracker maps (user, command) to an expiry time. Entries expire lazily on
// lookup and are swept periodically by Run.
type Tracker struct {
	mu      sync.Mutex
	clock   clock.PassiveClock
	entries map[key]time.Time
	log     zerolog.Logger
}

// New returns an empty tracker. A nil clock means wall time.
func New(clk clock.PassiveClock, log zerolog.Logger) *Tracker {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Tracker{
		clock:   clk,
		entries: make(map[key]time.Time),
		log:     log,
	}
}

// Apply starts (or restarts) a cooldown of d. Last write wins. d <= 0 is a
// no-op, which is how commands without a cooldown are treated.
func (t *Tracker) Apply(userID, command string, d time.Duration) {
	if d <= 0 {
		return
	}
	t.mu.Lock()
	t.entries[key{userID, command}] = t.clock.Now().Add(d)
	t.mu.Unlock()
}

// Acquire starts a cooldown of d unless one is already running, checking and
// setting under one lock. It returns the time left and false when the user
// must wait. d <= 0 always succeeds and stores nothing.
func (t *Tracker) Acquire(userID, command string, d time.Duration) (time.Duration, bool) {
	if d <= 0 {
		return 0, true
	}
	k := key{userID, command}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	if expiry, ok := t.entries[k]; ok {
		if left := expiry.Sub(now); left > 0 {
			return left, false
		}
	}
	t.entries[k] = now.Add(d)
	return 0, true
}

// Remaining returns how long the user still has to wait, zero if nothing is
// active. An expired entry is dropped on the way out.
func (t *Tracker) Remaining(userID, command string) time.Duration {
	k := key{userID, command}

	t.mu.Lock()
	defer t.mu.Unlock()

	expiry, ok := t.entries[k]
	if !ok {
		return 0
	}
	left := expiry.Sub(t.clock.Now())
	if left <= 0 {
		delete(t.entries, k)
		return 0
	}
	return left
}

// RemainingSeconds is Remaining rounded up to whole seconds.
func (t *Tracker) RemainingSeconds(userID, command string) int {
	return int(math.Ceil(t.Remaining(userID, command).Seconds()))
}

// Clear drops a single cooldown.
func (t *Tracker) Clear(userID, command string) {
	t.mu.Lock()
	delete(t.entries, key{userID, command})
	t.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Sweep removes every expired entry and returns how many were dropped.
func (t *Tracker) Sweep() int {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for k, expiry := range t.entries {
		if !expiry.After(now) {
			delete(t.entries, k)
			removed++
		}
	}
	return removed
}

// Run sweeps expired cooldowns every interval until ctx is done.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := t.Sweep(); n > 0 {
				t.log.Debug().Int("removed", n).Msg("Expired cooldowns cleared")
			}
		}
	}
}
