package paginate

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"k8s.io/utils/clock"

	"github.com/keshon/nvbot/internal/metrics"
)

// Manager keeps live sessions by ID. The store is bounded; the least recently
// used session is closed when a new one does not fit.
type Manager[T any] struct {
	cache   *lru.Cache[string, *Session[T]]
	ttl     time.Duration
	clock   clock.WithTickerAndDelayedExecution
	metrics *metrics.Metrics
	log     zerolog.Logger
}

type ManagerConfig struct {
	Size    int
	TTL     time.Duration
	Clock   clock.WithTickerAndDelayedExecution
	Metrics *metrics.Metrics
	Log     zerolog.Logger
}

func NewManager[T any](cfg ManagerConfig) (*Manager[T], error) {
	if cfg.Size <= 0 {
		cfg.Size = 512
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	m := &Manager[T]{
		ttl:     cfg.TTL,
		clock:   cfg.Clock,
		metrics: cfg.Metrics,
		log:     cfg.Log,
	}
	cache, err := lru.NewWithEvict(cfg.Size, func(_ string, s *Session[T]) {
		s.evict()
	})
	if err != nil {
		return nil, fmt.Errorf("create session store: %w", err)
	}
	m.cache = cache
	return m, nil
}

// Open starts a session and stores it. onClose may be nil.
func (m *Manager[T]) Open(owner string, items []T, onClose func(*Session[T], CloseReason)) (*Session[T], error) {
	id := uuid.NewString()

	var s *Session[T]
	hook := func(reason CloseReason) {
		m.cache.Remove(id)
		m.metrics.SessionClosed()
		m.log.Debug().Str("session", id).Str("reason", reason.String()).Msg("Pagination session closed")
		if onClose != nil {
			onClose(s, reason)
		}
	}

	s, err := New(owner, items, m.ttl, WithID(id), WithClock(m.clock), OnClose(hook))
	if err != nil {
		return nil, err
	}
	m.cache.Add(id, s)
	m.metrics.SessionOpened()
	m.log.Debug().Str("session", id).Str("owner", owner).Int("items", len(items)).Msg("Pagination session opened")
	return s, nil
}

func (m *Manager[T]) Get(id string) (*Session[T], bool) {
	return m.cache.Get(id)
}

// Handle routes an event to the session with the given ID. Unknown IDs are
// treated as closed sessions.
func (m *Manager[T]) Handle(id string, ev Event) (*Session[T], Outcome[T]) {
	s, ok := m.cache.Get(id)
	if !ok {
		return nil, Outcome[T]{Result: Closed}
	}
	return s, s.Handle(ev)
}

func (m *Manager[T]) Len() int { return m.cache.Len() }

// CloseAll closes every live session, used on shutdown.
func (m *Manager[T]) CloseAll() {
	for _, id := range m.cache.Keys() {
		if s, ok := m.cache.Peek(id); ok {
			s.Close()
		}
	}
}
