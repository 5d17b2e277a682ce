// Package paginate holds interactive result pages: a fixed list of items one
// user can step through until the session expires.
package paginate

import (
	"errors"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

var ErrEmpty = errors.New("paginate: no items")

type Direction int

const (
	Previous Direction = iota
	Next
)

type Action int

const (
	ActionPrevious Action = iota
	ActionNext
	ActionExpand
)

func (a Action) String() string {
	switch a {
	case ActionPrevious:
		return "prev"
	case ActionNext:
		return "next"
	case ActionExpand:
		return "all"
	}
	return "unknown"
}

// ParseAction is the inverse of Action.String.
func ParseAction(s string) (Action, bool) {
	switch s {
	case "prev":
		return ActionPrevious, true
	case "next":
		return ActionNext, true
	case "all":
		return ActionExpand, true
	}
	return 0, false
}

// Result tells the caller what to do after Handle.
type Result int

const (
	Ignored   Result = iota // not the owner, or unknown action; send nothing
	Unchanged               // navigation hit a bound; acknowledge without re-render
	Moved                   // re-render the current item
	Expanded                // send the full listing privately
	Closed                  // session is over; drop the event
)

func (r Result) String() string {
	switch r {
	case Ignored:
		return "ignored"
	case Unchanged:
		return "unchanged"
	case Moved:
		return "moved"
	case Expanded:
		return "expanded"
	case Closed:
		return "closed"
	}
	return "unknown"
}

type CloseReason int

const (
	ReasonClosed CloseReason = iota
	ReasonExpired
	ReasonEvicted
)

func (r CloseReason) String() string {
	switch r {
	case ReasonExpired:
		return "expired"
	case ReasonEvicted:
		return "evicted"
	}
	return "closed"
}

type Event struct {
	Principal string
	Action    Action
}

// View is everything needed to render the current page.
type View[T any] struct {
	Item        T
	Index       int
	Position    int
	Total       int
	HasPrevious bool
	HasNext     bool
	Closed      bool
}

type Outcome[T any] struct {
	Result Result
	View   View[T]
	Items  []T // set for Expanded
}

type settings struct {
	id      string
	clock   clock.WithTickerAndDelayedExecution
	onClose func(CloseReason)
}

type Option func(*settings)

func WithID(id string) Option { return func(s *settings) { s.id = id } }

func WithClock(c clock.WithTickerAndDelayedExecution) Option {
	return func(s *settings) { s.clock = c }
}

// OnClose registers a hook that runs once when the session closes, for
// whatever reason. It must not call Edit.
func OnClose(fn func(CloseReason)) Option { return func(s *settings) { s.onClose = fn } }

type Session[T any] struct {
	id      string
	owner   string
	items   []T
	onClose func(CloseReason)

	mu     sync.Mutex
	index  int
	closed bool
	timer  clock.Timer

	// edit serializes message edits with the close hook.
	edit sync.Mutex
}

// New opens a session on items owned by owner. A positive ttl closes it
// unconditionally once elapsed.
func New[T any](owner string, items []T, ttl time.Duration, opts ...Option) (*Session[T], error) {
	if len(items) == 0 {
		return nil, ErrEmpty
	}
	cfg := settings{clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Session[T]{
		id:      cfg.id,
		owner:   owner,
		items:   append([]T(nil), items...),
		onClose: cfg.onClose,
	}
	if ttl > 0 {
		// The callback must not touch the clock: fake clocks fire it while
		// holding their own lock.
		t := cfg.clock.AfterFunc(ttl, func() { s.close(ReasonExpired) })
		s.mu.Lock()
		s.timer = t
		s.mu.Unlock()
	}
	return s, nil
}

func (s *Session[T]) ID() string    { return s.id }
func (s *Session[T]) Owner() string { return s.owner }
func (s *Session[T]) Len() int      { return len(s.items) }

func (s *Session[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Items returns a copy of every item.
func (s *Session[T]) Items() []T {
	return append([]T(nil), s.items...)
}

// Navigate moves one step, clamped to the item range. It reports whether the
// index changed. A closed session never changes.
func (s *Session[T]) Navigate(dir Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navigateLocked(dir)
}

func (s *Session[T]) navigateLocked(dir Direction) bool {
	if s.closed {
		return false
	}
	next := s.index
	switch dir {
	case Previous:
		next--
	case Next:
		next++
	}
	next = max(0, min(next, len(s.items)-1))
	if next == s.index {
		return false
	}
	s.index = next
	return true
}

func (s *Session[T]) Render() View[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session[T]) viewLocked() View[T] {
	return View[T]{
		Item:        s.items[s.index],
		Index:       s.index,
		Position:    s.index + 1,
		Total:       len(s.items),
		HasPrevious: s.index > 0,
		HasNext:     s.index < len(s.items)-1,
		Closed:      s.closed,
	}
}

// Edit runs fn with the current view unless the session is closed. It holds
// the same lock as the close hook, so a render can never land after the
// controls were removed. It reports whether fn ran.
func (s *Session[T]) Edit(fn func(View[T]) error) (bool, error) {
	s.edit.Lock()
	defer s.edit.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, nil
	}
	v := s.viewLocked()
	s.mu.Unlock()

	return true, fn(v)
}

// Handle applies a component event.
func (s *Session[T]) Handle(ev Event) Outcome[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Outcome[T]{Result: Closed, View: s.viewLocked()}
	}
	if ev.Principal != s.owner {
		return Outcome[T]{Result: Ignored, View: s.viewLocked()}
	}

	switch ev.Action {
	case ActionPrevious, ActionNext:
		dir := Previous
		if ev.Action == ActionNext {
			dir = Next
		}
		res := Unchanged
		if s.navigateLocked(dir) {
			res = Moved
		}
		return Outcome[T]{Result: res, View: s.viewLocked()}
	case ActionExpand:
		return Outcome[T]{Result: Expanded, View: s.viewLocked(), Items: append([]T(nil), s.items...)}
	}
	return Outcome[T]{Result: Ignored, View: s.viewLocked()}
}

// Close ends the session early. Calling it more than once, or racing it with
// expiry, runs the close hook only once.
func (s *Session[T]) Close() {
	if !s.close(ReasonClosed) {
		return
	}
	s.mu.Lock()
	t := s.timer
	s.mu.Unlock()
	if t != nil {
		t.Stop()
	}
}

func (s *Session[T]) evict() { s.close(ReasonEvicted) }

func (s *Session[T]) close(reason CloseReason) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.closed = true
	s.mu.Unlock()

	if s.onClose != nil {
		s.edit.Lock()
		s.onClose(reason)
		s.edit.Unlock()
	}
	return true
}
