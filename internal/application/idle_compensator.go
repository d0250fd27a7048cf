package application

import (
	"sync"
	"time"
)

// IdleCompensator keeps time spent with the whole application in the
// background from counting as window inactivity.
type IdleCompensator struct {
	store *ActivityStore
	// exclusion is shared with evaluation passes so no pass observes a
	// partially shifted store.
	exclusion sync.Locker

	mu                 sync.Mutex
	lastForegroundLoss time.Time
	backgrounded       bool
}

func NewIdleCompensator(store *ActivityStore, exclusion sync.Locker) *IdleCompensator {
	if exclusion == nil {
		exclusion = &sync.Mutex{}
	}

	return &IdleCompensator{store: store, exclusion: exclusion}
}

func (c *IdleCompensator) Deactivated(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastForegroundLoss = now
	c.backgrounded = true
}

// Activated shifts every record forward by the time elapsed since the
// application lost the foreground and returns the applied shift. A
// foreground signal without a preceding background signal shifts nothing.
func (c *IdleCompensator) Activated(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	var idle time.Duration
	if c.backgrounded {
		idle = now.Sub(c.lastForegroundLoss)
	}

	if idle > 0 {
		c.exclusion.Lock()
		c.store.Shift(idle)
		c.exclusion.Unlock()
	} else {
		idle = 0
	}

	c.lastForegroundLoss = now
	c.backgrounded = false

	return idle
}

func (c *IdleCompensator) Backgrounded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.backgrounded
}
