package screens

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/i474232898/krishimitra-sync/internal/cache"
	"github.com/i474232898/krishimitra-sync/internal/common"
	"github.com/i474232898/krishimitra-sync/internal/store"
)

// resource is one cached, location-keyed fetch (weather or recommendations).
// Concurrent refreshes of the same key share one gateway call; a refresh for
// a newer key, or an invalidate, retires every older one before it commits.
// A retired flight is forgotten, so later reads start a fetch that can
// commit instead of joining one that cannot.
type resource[T any] struct {
	name   string
	guard  cache.Guard
	group  singleflight.Group
	entry  func(store.State) cache.Entry[T]
	action func(key string, data T, at time.Time) store.Action

	mu         sync.Mutex
	background map[string]bool
	flights    map[string]uint64
	seq        uint64
}

type refreshed[T any] struct {
	data T
	at   time.Time
}

type fetchFunc[T any] func(ctx context.Context) (T, error)

func (r *resource[T]) lookup(s *Service, key string) cache.Lookup[T] {
	return cache.View(r.entry(s.store.Snapshot()), key, s.now())
}

// read returns the entry for key when fresh and refreshes it otherwise.
func (r *resource[T]) read(ctx context.Context, s *Service, key string, fetch fetchFunc[T]) (cache.Lookup[T], error) {
	if l := r.lookup(s, key); l.Fresh {
		return l, nil
	}
	return r.refresh(ctx, s, key, fetch)
}

// refresh fetches key and replaces the entry if the refresh is still current
// when it resolves. On failure the previous entry is left as it was and
// returned alongside the error.
func (r *resource[T]) refresh(ctx context.Context, s *Service, key string, fetch fetchFunc[T]) (cache.Lookup[T], error) {
	log := s.logger.WithFields(logrus.Fields{"resource": r.name, "key": key})

	v, err, _ := r.group.Do(key, func() (any, error) {
		ticket, id := r.begin(key)
		defer r.finish(key, id)
		data, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		at := s.now()
		if !ticket.Commit(ctx, func() { s.store.Dispatch(r.action(key, data, at)) }) {
			log.Debug("superseded refresh discarded")
		}
		return refreshed[T]{data: data, at: at}, nil
	})
	if err != nil {
		common.LogWarn(log, "refresh failed", err, nil)
		return r.lookup(s, key), err
	}

	res := v.(refreshed[T])
	return cache.Lookup[T]{Data: res.data, Present: true, Fresh: true, FetchedAt: &res.at}, nil
}

// begin issues the ticket for a new flight of key. Flights of other keys are
// retired by it, so they are forgotten.
func (r *resource[T]) begin(key string) (cache.Ticket, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.flights == nil {
		r.flights = make(map[string]uint64)
	}
	for k := range r.flights {
		if k != key {
			r.group.Forget(k)
			delete(r.flights, k)
		}
	}
	r.seq++
	r.flights[key] = r.seq
	return r.guard.Begin(), r.seq
}

func (r *resource[T]) finish(key string, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.flights[key] == id {
		delete(r.flights, key)
	}
}

// invalidate retires every outstanding refresh and forgets its flight.
func (r *resource[T]) invalidate() {
	r.guard.Invalidate()
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.flights {
		r.group.Forget(k)
		delete(r.flights, k)
	}
}

// refreshInBackground starts a refresh bounded by the service's background
// timeout unless one for key is already running.
func (r *resource[T]) refreshInBackground(s *Service, key string, fetch fetchFunc[T]) {
	r.mu.Lock()
	if r.background == nil {
		r.background = make(map[string]bool)
	}
	if r.background[key] {
		r.mu.Unlock()
		return
	}
	r.background[key] = true
	r.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.background, key)
			r.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.bgTimeout)
		defer cancel()
		_, _ = r.refresh(ctx, s, key, fetch)
	}()
}
