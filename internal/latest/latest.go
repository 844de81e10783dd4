// Package latest enforces "last request wins" for asynchronous operations.
// Each operation category owns a Guard; starting a request cancels the one
// before it, and only the newest request may apply its result.
package latest

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded is returned when a newer request of the same category
// started before this one could finish.
var ErrSuperseded = errors.New("superseded by a newer request")

// Guard orders the requests of one category.
type Guard struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelCauseFunc
}

// Ticket is one request issued by a Guard.
type Ticket struct {
	guard  *Guard
	gen    uint64
	ctx    context.Context
	cancel context.CancelCauseFunc
}

// Begin starts a new request, cancelling the previous one if it is still
// running. The caller must call Done on the returned ticket.
func (g *Guard) Begin(ctx context.Context) *Ticket {
	ctx, cancel := context.WithCancelCause(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel(ErrSuperseded)
	}
	g.gen++
	g.cancel = cancel
	return &Ticket{guard: g, gen: g.gen, ctx: ctx, cancel: cancel}
}

// Generation returns the number of requests started so far.
func (g *Guard) Generation() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen
}

// Context is cancelled with ErrSuperseded as soon as a newer request starts.
func (t *Ticket) Context() context.Context {
	return t.ctx
}

// Current reports whether no newer request has started.
func (t *Ticket) Current() bool {
	t.guard.mu.Lock()
	defer t.guard.mu.Unlock()
	return t.gen == t.guard.gen
}

// Commit runs apply if the ticket is still the newest request. A newer
// request cannot start while apply runs.
func (t *Ticket) Commit(apply func()) error {
	t.guard.mu.Lock()
	defer t.guard.mu.Unlock()
	if t.gen != t.guard.gen {
		return ErrSuperseded
	}
	apply()
	return nil
}

// Err maps err to ErrSuperseded when the ticket was cancelled by a newer
// request, so callers can tell staleness from real failures.
func (t *Ticket) Err(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(context.Cause(t.ctx), ErrSuperseded) {
		return ErrSuperseded
	}
	return err
}

// Done releases the ticket's context.
func (t *Ticket) Done() {
	t.guard.mu.Lock()
	if t.guard.gen == t.gen {
		t.guard.cancel = nil
	}
	t.guard.mu.Unlock()
	t.cancel(context.Canceled)
}

// Debounce waits d before returning. It returns early with the context's
// cause, ErrSuperseded for a ticket context, if ctx ends first.
func Debounce(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return context.Cause(ctx)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}
