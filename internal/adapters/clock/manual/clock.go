// Package manual provides a clock whose time only moves when told to. The
// simulator replays scenarios on it and tests use it to fire settle delays
// deterministically.
package manual

import (
	"sort"
	"sync"
	"time"

	"github.com/samgubernick/TidyTabs-VisualStudio/internal/ports"
)

type Clock struct {
	mu      sync.Mutex
	current time.Time
	waiters []*waiter
}

type waiter struct {
	deadline time.Time
	callback func()
	stopped  bool
	fired    bool
}

var _ ports.Clock = (*Clock)(nil)

func New(initial time.Time) *Clock {
	return &Clock{current: initial}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current
}

// AfterFunc registers f to run once the clock is advanced past d. f runs
// synchronously inside Advance; a non-positive d runs f before AfterFunc
// returns.
func (c *Clock) AfterFunc(d time.Duration, f func()) ports.Timer {
	if d <= 0 {
		f()
		return stoppedTimer{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	w := &waiter{deadline: c.current.Add(d), callback: f}
	c.waiters = append(c.waiters, w)
	return &timer{clock: c, waiter: w}
}

// Advance moves the clock forward by d and fires every timer due by then.
func (c *Clock) Advance(d time.Duration) {
	c.AdvanceTo(c.Now().Add(d))
}

// AdvanceTo moves the clock to target, firing due timers in deadline order.
// The clock reads each timer's deadline while its callback runs. Moving
// backwards is a no-op.
func (c *Clock) AdvanceTo(target time.Time) {
	for {
		next := c.popExpired(target)
		if next == nil {
			break
		}
		next.callback()
	}

	c.mu.Lock()
	if target.After(c.current) {
		c.current = target
	}
	c.mu.Unlock()
}

// NextDeadline returns the earliest pending timer deadline.
func (c *Clock) NextDeadline() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := c.pendingLocked()
	if len(pending) == 0 {
		return time.Time{}, false
	}
	return pending[0].deadline, true
}

func (c *Clock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.pendingLocked())
}

func (c *Clock) popExpired(target time.Time) *waiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := c.pendingLocked()
	c.waiters = pending
	if len(pending) == 0 || pending[0].deadline.After(target) {
		return nil
	}

	next := pending[0]
	next.fired = true
	c.waiters = pending[1:]
	if next.deadline.After(c.current) {
		c.current = next.deadline
	}
	return next
}

// pendingLocked returns live waiters sorted by deadline. Must be called with
// c.mu held.
func (c *Clock) pendingLocked() []*waiter {
	pending := make([]*waiter, 0, len(c.waiters))
	for _, w := range c.waiters {
		if w.stopped || w.fired {
			continue
		}
		pending = append(pending, w)
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].deadline.Before(pending[j].deadline)
	})
	return pending
}

type timer struct {
	clock  *Clock
	waiter *waiter
}

func (t *timer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.waiter.stopped || t.waiter.fired {
		return false
	}
	t.waiter.stopped = true
	return true
}

type stoppedTimer struct{}

func (stoppedTimer) Stop() bool { return false }
