package scan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptSource plays a fixed sample sequence, then blocks until the
// context is cancelled.
type scriptSource struct {
	mu      sync.Mutex
	samples []Sample
	errs    []error // interleaved before samples run out, optional
}

func (s *scriptSource) Next(ctx context.Context) (Sample, error) {
	s.mu.Lock()
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		s.mu.Unlock()
		return Sample{}, err
	}
	if len(s.samples) > 0 {
		out := s.samples[0]
		s.samples = s.samples[1:]
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()
	<-ctx.Done()
	return Sample{}, ctx.Err()
}

// collector records every frame it is handed.
type collector struct {
	mu     sync.Mutex
	frames []*Frame
	stats  []Stats
}

func (c *collector) Accept(f *Frame, st Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	c.stats = append(c.stats, st)
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *collector) last() (*Frame, Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return nil, Stats{}
	}
	return c.frames[len(c.frames)-1], c.stats[len(c.stats)-1]
}

func pipelineConfig() Config {
	cfg := DefaultConfig()
	cfg.AngleResolutionDeg = 180
	cfg.TargetRefreshHz = 200 // keep test latency low
	return cfg
}

func newTestPipeline(t *testing.T, cfg Config, src Source) *Pipeline {
	t.Helper()
	p, err := NewPipeline(cfg, src, NewMetrics(prometheus.NewRegistry()))
	require.NoError(t, err)
	return p
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached within deadline")
}

func TestPipelinePublishesFrames(t *testing.T) {
	src := &scriptSource{samples: []Sample{
		{AngleDeg: 0, DistanceMM: 1000, Quality: 50, NewScan: true},
		{AngleDeg: 180, DistanceMM: 2000, Quality: 50},
		{AngleDeg: 0, DistanceMM: 1500, Quality: 60, NewScan: true},
	}}

	p := newTestPipeline(t, pipelineConfig(), src)
	sink := &collector{}
	p.Attach(sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitFor(t, func() bool { return sink.count() >= 1 })

	frame, st := sink.last()
	assert.Equal(t, 2, st.PointCount)
	assert.Equal(t, 1000.0, st.MinMM)
	assert.Equal(t, 2000.0, st.MaxMM)
	assert.True(t, frame.Complete)

	// The published slot matches what the renderer saw.
	pub, pubStats, ok := p.Published()
	require.True(t, ok)
	assert.Equal(t, frame.ID, pub.ID)
	assert.Equal(t, st, pubStats)

	cancel()
	require.NoError(t, <-done)
}

func TestPipelineStalePublish(t *testing.T) {
	cfg := pipelineConfig()
	cfg.TargetRefreshHz = 50 // stale after 40ms

	src := &scriptSource{samples: []Sample{
		{AngleDeg: 90, DistanceMM: 800, Quality: 30},
	}}

	p := newTestPipeline(t, cfg, src)
	sink := &collector{}
	p.Attach(sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitFor(t, func() bool { return sink.count() >= 1 })

	frame, st := sink.last()
	assert.False(t, frame.Complete, "stale publish must be marked partial")
	assert.Equal(t, 1, st.PointCount)

	cancel()
	require.NoError(t, <-done)
}

func TestPipelineSkipsRecoverableSourceErrors(t *testing.T) {
	src := &scriptSource{
		errs: []error{ErrTimeout, ErrMalformedPacket},
		samples: []Sample{
			{AngleDeg: 0, DistanceMM: 500, Quality: 20, NewScan: true},
			{AngleDeg: 180, DistanceMM: 600, Quality: 20},
			{AngleDeg: 0, DistanceMM: 550, Quality: 20, NewScan: true},
		},
	}

	p := newTestPipeline(t, pipelineConfig(), src)
	sink := &collector{}
	p.Attach(sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitFor(t, func() bool { return sink.count() >= 1 })
	cancel()
	require.NoError(t, <-done)
}

func TestPipelineStopsOnDisconnect(t *testing.T) {
	src := &scriptSource{samples: []Sample{
		{AngleDeg: 10, DistanceMM: 500, Quality: 20},
	}}
	p := newTestPipeline(t, pipelineConfig(), &disconnectAfter{inner: src})

	err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrDisconnected)

	// The in-flight partial frame was discarded, not published.
	_, _, ok := p.Published()
	assert.False(t, ok)
}

// disconnectAfter returns ErrDisconnected once the inner script drains.
type disconnectAfter struct {
	inner *scriptSource
}

func (d *disconnectAfter) Next(ctx context.Context) (Sample, error) {
	d.inner.mu.Lock()
	empty := len(d.inner.samples) == 0
	d.inner.mu.Unlock()
	if empty {
		return Sample{}, ErrDisconnected
	}
	return d.inner.Next(ctx)
}

func TestPipelineInvalidSamplesDoNotStopRun(t *testing.T) {
	src := &scriptSource{samples: []Sample{
		{AngleDeg: 720, DistanceMM: 100, Quality: 10}, // rejected
		{AngleDeg: 0, DistanceMM: 1000, Quality: 50, NewScan: true},
		{AngleDeg: 180, DistanceMM: 2000, Quality: 50},
		{AngleDeg: 0, DistanceMM: 1500, Quality: 60, NewScan: true},
	}}

	p := newTestPipeline(t, pipelineConfig(), src)
	sink := &collector{}
	p.Attach(sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitFor(t, func() bool { return sink.count() >= 1 })
	_, st := sink.last()
	assert.Equal(t, 2, st.PointCount)

	cancel()
	require.NoError(t, <-done)
}
