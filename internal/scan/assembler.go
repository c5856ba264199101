package scan

import (
	"fmt"
	"sync"
	"time"
)

// FrameEvent reports the outcome of folding one sample into the
// assembler.
type FrameEvent int

const (
	// Accumulating means the sample was folded into the current frame.
	Accumulating FrameEvent = iota
	// FrameReady means a revolution completed and a frame was emitted.
	FrameReady
)

// Assembler groups the raw sample stream into revolution frames using the
// new-scan boundary flag, with a time-driven stale fallback so a stalled
// sensor cannot starve the renderer indefinitely.
//
// Exactly one goroutine feeds Ingest; FlushStale and Discard may be called
// from another. Emitted frames are detached from the accumulator before
// they are returned, so callers own them exclusively.
type Assembler struct {
	cfg    Config
	binner binner
	now    func() time.Time

	mu         sync.Mutex
	current    *Frame
	populated  int
	lastSample time.Time
}

// NewAssembler creates an assembler for the given configuration.
func NewAssembler(cfg Config) *Assembler {
	return &Assembler{
		cfg:    cfg,
		binner: binner{resolutionDeg: cfg.AngleResolutionDeg},
		now:    time.Now,
	}
}

// Ingest folds one sample into the current accumulator. When the sample
// carries a new-scan flag and the accumulator already holds data, the
// finished frame is returned with FrameReady and the sample seeds a fresh
// accumulator. A boundary on an empty accumulator is treated as a spurious
// double flag and ignored rather than emitting a degenerate empty frame.
func (a *Assembler) Ingest(s Sample) (FrameEvent, *Frame, error) {
	if s.AngleDeg < 0 || s.AngleDeg >= 360 {
		return Accumulating, nil, fmt.Errorf("angle %.2f outside [0,360): %w", s.AngleDeg, ErrInvalidSample)
	}
	if s.DistanceMM < 0 {
		return Accumulating, nil, fmt.Errorf("negative distance %.1f: %w", s.DistanceMM, ErrInvalidSample)
	}
	if s.Quality < 0 || s.Quality > 63 {
		return Accumulating, nil, fmt.Errorf("quality %d outside [0,63]: %w", s.Quality, ErrInvalidSample)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	a.lastSample = now

	var done *Frame
	if s.NewScan && a.populated > 0 {
		done = a.current
		done.Complete = true
		a.current = nil
		a.populated = 0
	}

	if a.current == nil {
		a.current = NewFrame(a.cfg.AngleResolutionDeg, now)
	}
	if a.binner.fold(a.current, s) {
		a.populated++
	}

	if done != nil {
		return FrameReady, done, nil
	}
	return Accumulating, nil, nil
}

// FlushStale force-publishes the accumulator when no sample has arrived
// within the configured stale timeout. The partial frame is returned with
// Complete false and the accumulator starts over, so no sample is ever
// counted in two published frames. Returns nil when nothing is stale.
func (a *Assembler) FlushStale(now time.Time) *Frame {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.populated == 0 || now.Sub(a.lastSample) <= a.cfg.StaleTimeout() {
		return nil
	}
	done := a.current
	a.current = nil
	a.populated = 0
	return done
}

// Discard drops the in-flight accumulator. Used after a source disconnect,
// when the partial data cannot be trusted as a clean revolution.
func (a *Assembler) Discard() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = nil
	a.populated = 0
}
