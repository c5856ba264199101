package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cadenceConfig(hz float64) Config {
	cfg := DefaultConfig()
	cfg.TargetRefreshHz = hz
	return cfg
}

func TestCadenceNewestWins(t *testing.T) {
	c := NewCadence(cadenceConfig(10)) // 100ms interval
	t0 := time.Unix(2000, 0)

	f1 := NewFrame(1.0, t0)
	f2 := NewFrame(1.0, t0)
	f3 := NewFrame(1.0, t0)

	assert.False(t, c.Offer(f1, Stats{}))
	assert.True(t, c.Offer(f2, Stats{}), "second offer should supersede the first")
	assert.True(t, c.Offer(f3, Stats{}))
	assert.Equal(t, uint64(2), c.Dropped())

	got, _, ok := c.Take(t0)
	require.True(t, ok)
	assert.Same(t, f3, got, "Take must hand out the newest frame")
}

func TestCadenceRateLimit(t *testing.T) {
	c := NewCadence(cadenceConfig(10))
	t0 := time.Unix(2000, 0)

	c.Offer(NewFrame(1.0, t0), Stats{})
	_, _, ok := c.Take(t0)
	require.True(t, ok)

	// Inside the refresh interval nothing is handed out even though a
	// frame is pending.
	c.Offer(NewFrame(1.0, t0), Stats{})
	_, _, ok = c.Take(t0.Add(50 * time.Millisecond))
	assert.False(t, ok)

	_, _, ok = c.Take(t0.Add(100 * time.Millisecond))
	assert.True(t, ok)
}

func TestCadenceDeliveryBound(t *testing.T) {
	// Offer a frame every 10ms for a simulated second at 10 Hz; no more
	// than ceil(T * hz) frames may come out.
	c := NewCadence(cadenceConfig(10))
	t0 := time.Unix(2000, 0)

	delivered := 0
	for i := 0; i < 100; i++ {
		now := t0.Add(time.Duration(i) * 10 * time.Millisecond)
		c.Offer(NewFrame(1.0, now), Stats{})
		if _, _, ok := c.Take(now); ok {
			delivered++
		}
	}
	if delivered > 10 {
		t.Fatalf("delivered %d frames in 1s at 10 Hz, want <= 10", delivered)
	}
	assert.Greater(t, delivered, 0)
}

func TestCadenceEmptyTake(t *testing.T) {
	c := NewCadence(cadenceConfig(10))
	_, _, ok := c.Take(time.Now())
	assert.False(t, ok)
}
