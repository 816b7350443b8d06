package store

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/i474232898/krishimitra-sync/internal/common"
)

// Listener is notified after every applied action with the state before and
// after. Listeners run outside the store lock and must not block for long.
type Listener func(prev, next State)

// Store is a concurrency-safe in-memory holder of the application state.
// All writes go through Dispatch.
type Store struct {
	mu sync.RWMutex

	state     State
	listeners []Listener
	logger    logrus.FieldLogger
}

// New creates an empty Store. A nil logger disables action logging.
func New(logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = common.DiscardLogger()
	}
	return &Store{logger: logger}
}

// Dispatch applies a and reports whether the state changed. Listeners are
// only called for applied actions.
func (s *Store) Dispatch(a Action) bool {
	s.mu.Lock()
	prev := s.state.clone()
	next := s.state
	if !a.apply(&next) {
		s.mu.Unlock()
		s.logger.WithField("action", a.Name()).Debug("action ignored")
		return false
	}
	s.state = next
	after := next.clone()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.logger.WithField("action", a.Name()).Debug("action applied")
	for _, l := range listeners {
		l(prev, after)
	}
	return true
}

// Snapshot returns a copy of the current state. Mutating it does not affect
// the store.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers l for every future state change.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}
