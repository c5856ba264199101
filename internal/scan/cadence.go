package scan

import (
	"sync"
	"time"
)

// Cadence throttles frame delivery to the renderer. Finished frames are
// offered as they complete; Take hands out the newest one no more often
// than the refresh interval. When several frames finish within one
// interval only the most recent survives, so the renderer always sees
// current state and never a backlog.
type Cadence struct {
	interval time.Duration

	mu       sync.Mutex
	pending  *Frame
	stats    Stats
	lastEmit time.Time
	dropped  uint64
}

// NewCadence creates a controller for the configured refresh rate.
func NewCadence(cfg Config) *Cadence {
	return &Cadence{interval: cfg.RefreshInterval()}
}

// Offer replaces the pending frame with a newer one. Never blocks.
// Returns true when an undelivered frame was superseded.
func (c *Cadence) Offer(f *Frame, s Stats) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	superseded := c.pending != nil
	if superseded {
		c.dropped++
	}
	c.pending = f
	c.stats = s
	return superseded
}

// Take returns the pending frame when one exists and at least one refresh
// interval has passed since the previous emission.
func (c *Cadence) Take(now time.Time) (*Frame, Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil || now.Sub(c.lastEmit) < c.interval {
		return nil, Stats{}, false
	}
	f, s := c.pending, c.stats
	c.pending = nil
	c.stats = Stats{}
	c.lastEmit = now
	return f, s, true
}

// Dropped reports how many offered frames were superseded before delivery.
func (c *Cadence) Dropped() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}
