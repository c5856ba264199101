package scan

import (
	"fmt"
	"time"
)

// Config holds the read-only pipeline parameters. It is constructed once
// at startup and passed explicitly into each component; nothing mutates
// it during operation.
type Config struct {
	AngleResolutionDeg float64 // angular bin width, 0.1-10.0 degrees
	MaxDistanceMM      float64 // readings beyond this are dropped
	MinQuality         int     // readings below this confidence are dropped
	MirrorHorizontally bool    // swap left/right (90 deg <-> 270 deg)
	TargetRefreshHz    float64 // renderer delivery ceiling
	StaleMultiplier    float64 // stale timeout in refresh intervals
}

// DefaultConfig mirrors the sensor's stock viewing parameters: 1 degree
// bins, 5 m display range, 20 Hz refresh.
func DefaultConfig() Config {
	return Config{
		AngleResolutionDeg: 1.0,
		MaxDistanceMM:      5000,
		MinQuality:         0,
		TargetRefreshHz:    20,
		StaleMultiplier:    2,
	}
}

// Validate checks all parameter ranges.
func (c Config) Validate() error {
	if c.AngleResolutionDeg < 0.1 || c.AngleResolutionDeg > 10.0 {
		return fmt.Errorf("angle resolution %.2f out of range [0.1, 10.0]", c.AngleResolutionDeg)
	}
	if c.MaxDistanceMM <= 0 {
		return fmt.Errorf("max distance %.1f must be positive", c.MaxDistanceMM)
	}
	if c.MinQuality < 0 || c.MinQuality > 63 {
		return fmt.Errorf("min quality %d out of range [0, 63]", c.MinQuality)
	}
	if c.TargetRefreshHz <= 0 {
		return fmt.Errorf("target refresh %.1f Hz must be positive", c.TargetRefreshHz)
	}
	if c.StaleMultiplier <= 0 {
		return fmt.Errorf("stale multiplier %.1f must be positive", c.StaleMultiplier)
	}
	return nil
}

// BinCount returns the number of angular slots per frame.
func (c Config) BinCount() int {
	return BinCount(c.AngleResolutionDeg)
}

// RefreshInterval is the minimum spacing between frames handed to a
// renderer.
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.TargetRefreshHz)
}

// StaleTimeout is how long the assembler waits without samples before
// force-publishing the current accumulator.
func (c Config) StaleTimeout() time.Duration {
	return time.Duration(float64(c.RefreshInterval()) * c.StaleMultiplier)
}
