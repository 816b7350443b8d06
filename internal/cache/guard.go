package cache

import (
	"context"
	"sync"
	"sync/atomic"
)

// Guard hands out generation tickets for one tracked resource. Only the most
// recently issued ticket may commit; Invalidate retires every outstanding
// ticket, e.g. when the location a refresh was started for changes.
type Guard struct {
	gen atomic.Uint64
	mu  sync.Mutex
}

// Ticket is the liveness token captured when a refresh starts.
type Ticket struct {
	guard *Guard
	gen   uint64
}

// Begin issues a ticket and supersedes all earlier ones.
func (g *Guard) Begin() Ticket {
	return Ticket{guard: g, gen: g.gen.Add(1)}
}

// Invalidate supersedes all outstanding tickets without issuing a new one.
// It never blocks, so it is safe to call from state listeners.
func (g *Guard) Invalidate() {
	g.gen.Add(1)
}

// Live reports whether t is still the current ticket.
func (t Ticket) Live() bool {
	return t.guard != nil && t.guard.gen.Load() == t.gen
}

// Commit runs fn if t is still current and ctx is not done. Commits are
// serialised, so an older ticket can never write after a newer one.
func (t Ticket) Commit(ctx context.Context, fn func()) bool {
	if t.guard == nil {
		return false
	}
	t.guard.mu.Lock()
	defer t.guard.mu.Unlock()

	if ctx.Err() != nil || !t.Live() {
		return false
	}
	fn()
	return true
}
