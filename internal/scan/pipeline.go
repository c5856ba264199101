package scan

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/banshee-data/scanview/internal/monitoring"
)

// Source is the blocking pull over the sensor link. Next returns the next
// raw sample or one of the sentinel errors from this package. It is the
// pipeline's only suspension point and must honour context cancellation.
type Source interface {
	Next(ctx context.Context) (Sample, error)
}

// Renderer consumes published frames. Accept runs on the pipeline's emit
// goroutine and must not block; a renderer that cannot keep up should
// drop internally rather than stall frame delivery.
type Renderer interface {
	Accept(f *Frame, s Stats)
}

type published struct {
	frame *Frame
	stats Stats
}

// Pipeline wires the assembler, filter, statistics and cadence controller
// between a sample source and any number of renderers.
//
// One goroutine reads the source and mutates the accumulator; the emit
// loop swaps finished frames into an atomic slot, so renderers and HTTP
// handlers never observe a partially updated frame.
type Pipeline struct {
	cfg       Config
	source    Source
	asm       *Assembler
	filter    Filter
	cadence   *Cadence
	metrics   *Metrics
	renderers []Renderer

	slot  atomic.Pointer[published]
	ready chan struct{}
}

// NewPipeline validates the configuration and assembles a pipeline. A nil
// metrics value registers counters with the default registry.
func NewPipeline(cfg Config, src Source, m *Metrics) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		m = NewMetrics(nil)
	}
	return &Pipeline{
		cfg:     cfg,
		source:  src,
		asm:     NewAssembler(cfg),
		filter:  NewFilter(cfg),
		cadence: NewCadence(cfg),
		metrics: m,
		ready:   make(chan struct{}, 1),
	}, nil
}

// Attach registers a renderer. Must be called before Run.
func (p *Pipeline) Attach(r Renderer) {
	p.renderers = append(p.renderers, r)
}

// Published returns the most recently delivered frame and its statistics.
// The frame is immutable; callers must not modify it.
func (p *Pipeline) Published() (*Frame, Stats, bool) {
	pub := p.slot.Load()
	if pub == nil {
		return nil, Stats{}, false
	}
	return pub.frame, pub.stats, true
}

// Run drives the pipeline until the context is cancelled or the source
// disconnects. The returned error is nil on clean shutdown.
func (p *Pipeline) Run(ctx context.Context) error {
	monitoring.Logf("pipeline: starting (%d bins at %.2f deg, %.1f Hz refresh)",
		p.cfg.BinCount(), p.cfg.AngleResolutionDeg, p.cfg.TargetRefreshHz)

	errCh := make(chan error, 1)
	go func() { errCh <- p.readLoop(ctx) }()

	ticker := time.NewTicker(p.cfg.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case err := <-errCh:
			monitoring.Logf("pipeline: stopped (dropped %d frames)", p.cadence.Dropped())
			return err
		case now := <-ticker.C:
			if f := p.asm.FlushStale(now); f != nil {
				p.metrics.FramesStale.Inc()
				p.offer(f)
			}
			p.emit(now)
		case <-p.ready:
			p.emit(time.Now())
		}
	}
}

// readLoop pulls samples until cancellation or a terminal source failure.
func (p *Pipeline) readLoop(ctx context.Context) error {
	for {
		s, err := p.source.Next(ctx)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil
		case errors.Is(err, ErrTimeout):
			p.metrics.SourceTimeouts.Inc()
			continue
		case errors.Is(err, ErrMalformedPacket):
			p.metrics.MalformedPackets.Inc()
			continue
		case errors.Is(err, ErrDisconnected):
			// A partial revolution from a dead link cannot be trusted.
			p.asm.Discard()
			monitoring.Logf("pipeline: source disconnected: %v", err)
			return err
		default:
			p.asm.Discard()
			return err
		}

		ev, frame, err := p.asm.Ingest(s)
		if err != nil {
			p.metrics.InvalidSamples.Inc()
			continue
		}
		p.metrics.Samples.Inc()
		if ev == FrameReady {
			p.metrics.FramesBuilt.Inc()
			p.offer(frame)
		}
	}
}

// offer filters a finished frame, derives its statistics and hands it to
// the cadence controller, then nudges the emit loop.
func (p *Pipeline) offer(f *Frame) {
	filtered := p.filter.Apply(f)
	st := ComputeStats(filtered)
	if p.cadence.Offer(filtered, st) {
		p.metrics.FramesDropped.Inc()
	}
	select {
	case p.ready <- struct{}{}:
	default:
	}
}

// emit delivers the newest cadence-eligible frame to all renderers and
// publishes it in the shared slot.
func (p *Pipeline) emit(now time.Time) {
	f, st, ok := p.cadence.Take(now)
	if !ok {
		return
	}
	p.slot.Store(&published{frame: f, stats: st})
	p.metrics.FramesPublished.Inc()
	for _, r := range p.renderers {
		r.Accept(f, st)
	}
}
