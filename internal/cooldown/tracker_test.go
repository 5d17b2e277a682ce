package cooldown

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

func newTracker() (*Tracker, *testingclock.FakeClock) {
	clk := testingclock.NewFakeClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	return New(clk, zerolog.Nop()), clk
}

func TestRemainingCountsDownAndRoundsUp(t *testing.T) {
	tr, clk := newTracker()
	tr.Apply("u1", "yts", 5*time.Second)

	assert.Equal(t, 5, tr.RemainingSeconds("u1", "yts"))

	clk.Step(1500 * time.Millisecond)
	assert.Equal(t, 4, tr.RemainingSeconds("u1", "yts"), "3.5s left rounds up")

	clk.Step(3400 * time.Millisecond)
	assert.Equal(t, 1, tr.RemainingSeconds("u1", "yts"))

	clk.Step(100 * time.Millisecond)
	assert.Equal(t, 0, tr.RemainingSeconds("u1", "yts"))
	assert.Equal(t, 0, tr.Len(), "expired entry is dropped lazily")
}

func TestNoCooldownIsAlwaysZero(t *testing.T) {
	tr, _ := newTracker()
	for i := 0; i < 10; i++ {
		tr.Apply("u1", "cmdlist", 0)
		assert.Zero(t, tr.Remaining("u1", "cmdlist"))
	}
	assert.Zero(t, tr.Len())
}

func TestEntriesAreIndependent(t *testing.T) {
	tr, clk := newTracker()
	tr.Apply("u1", "claude", 8*time.Second)
	tr.Apply("u1", "imagine", 20*time.Second)
	tr.Apply("u2", "claude", 8*time.Second)

	clk.Step(10 * time.Second)

	assert.Zero(t, tr.Remaining("u1", "claude"))
	assert.Zero(t, tr.Remaining("u2", "claude"))
	assert.Equal(t, 10, tr.RemainingSeconds("u1", "imagine"))
}

func TestApplyOverwrites(t *testing.T) {
	tr, clk := newTracker()
	tr.Apply("u1", "meme", 10*time.Second)
	clk.Step(8 * time.Second)
	tr.Apply("u1", "meme", 10*time.Second)

	assert.Equal(t, 10, tr.RemainingSeconds("u1", "meme"))
}

func TestSweepDropsOnlyExpired(t *testing.T) {
	tr, clk := newTracker()
	tr.Apply("u1", "a", time.Second)
	tr.Apply("u2", "a", time.Minute)

	clk.Step(2 * time.Second)
	assert.Equal(t, 1, tr.Sweep())
	assert.Equal(t, 1, tr.Len())
}

func TestClear(t *testing.T) {
	tr, _ := newTracker()
	tr.Apply("u1", "rba", 3*time.Second)
	tr.Clear("u1", "rba")
	assert.Zero(t, tr.Remaining("u1", "rba"))
}

func TestRunStopsWithContext(t *testing.T) {
	tr, _ := newTracker()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx, time.Millisecond) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestAcquire(t *testing.T) {
	tr, clk := newTracker()

	left, ok := tr.Acquire("u1", "claude", 8*time.Second)
	assert.True(t, ok)
	assert.Zero(t, left)

	clk.Step(3 * time.Second)
	left, ok = tr.Acquire("u1", "claude", 8*time.Second)
	assert.False(t, ok)
	assert.Equal(t, 5*time.Second, left)

	clk.Step(5 * time.Second)
	_, ok = tr.Acquire("u1", "claude", 8*time.Second)
	assert.True(t, ok, "expired cooldown can be taken again")
	assert.Equal(t, 8*time.Second, tr.Remaining("u1", "claude"))

	_, ok = tr.Acquire("u1", "ping", 0)
	assert.True(t, ok)
	_, ok = tr.Acquire("u1", "ping", 0)
	assert.True(t, ok)
	assert.Equal(t, 1, tr.Len())
}

func TestAcquireIsExclusive(t *testing.T) {
	tr, _ := newTracker()

	var won atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok := tr.Acquire("u1", "imagine", 10*time.Second); ok {
				won.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, won.Load())
}
