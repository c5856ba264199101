package scan

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.AngleResolutionDeg = 180
	return cfg
}

// fakeClock returns a clock function and a pointer that tests can advance.
func fakeClock(start time.Time) (func() time.Time, *time.Time) {
	now := start
	return func() time.Time { return now }, &now
}

func TestAssemblerRevolutionBoundary(t *testing.T) {
	a := NewAssembler(testConfig())

	// First boundary lands on an empty accumulator and must not emit.
	ev, frame, err := a.Ingest(Sample{AngleDeg: 0, DistanceMM: 1000, Quality: 50, NewScan: true})
	require.NoError(t, err)
	assert.Equal(t, Accumulating, ev)
	assert.Nil(t, frame)

	ev, frame, err = a.Ingest(Sample{AngleDeg: 180, DistanceMM: 2000, Quality: 50})
	require.NoError(t, err)
	assert.Equal(t, Accumulating, ev)
	assert.Nil(t, frame)

	// Second boundary closes the revolution.
	ev, frame, err = a.Ingest(Sample{AngleDeg: 0, DistanceMM: 1500, Quality: 60, NewScan: true})
	require.NoError(t, err)
	require.Equal(t, FrameReady, ev)
	require.NotNil(t, frame)

	assert.True(t, frame.Complete)
	require.Len(t, frame.Bins, 2)
	assert.True(t, frame.Bins[0].Populated)
	assert.Equal(t, 1000.0, frame.Bins[0].DistanceMM)
	assert.True(t, frame.Bins[1].Populated)
	assert.Equal(t, 2000.0, frame.Bins[1].DistanceMM)

	st := ComputeStats(frame)
	assert.Equal(t, 2, st.PointCount)
	assert.Equal(t, 1000.0, st.MinMM)
	assert.Equal(t, 2000.0, st.MaxMM)
	assert.Equal(t, 1500.0, st.AvgMM)

	// The boundary sample seeded the next accumulator.
	ev, done, err := a.Ingest(Sample{AngleDeg: 90, DistanceMM: 700, Quality: 10, NewScan: true})
	require.NoError(t, err)
	require.Equal(t, FrameReady, ev)
	assert.True(t, done.Bins[0].Populated)
	assert.Equal(t, 1500.0, done.Bins[0].DistanceMM)
}

func TestAssemblerSpuriousDoubleBoundary(t *testing.T) {
	a := NewAssembler(testConfig())

	for i := 0; i < 3; i++ {
		ev, frame, err := a.Ingest(Sample{AngleDeg: 0, DistanceMM: 0, Quality: 50, NewScan: true})
		require.NoError(t, err)
		assert.Equal(t, Accumulating, ev, "boundary %d", i)
		assert.Nil(t, frame)
	}
}

func TestAssemblerRejectsInvalidSamples(t *testing.T) {
	a := NewAssembler(testConfig())

	cases := []Sample{
		{AngleDeg: 360, DistanceMM: 100, Quality: 10},
		{AngleDeg: -0.5, DistanceMM: 100, Quality: 10},
		{AngleDeg: 400.25, DistanceMM: 100, Quality: 10},
		{AngleDeg: 10, DistanceMM: -1, Quality: 10},
		{AngleDeg: 10, DistanceMM: 100, Quality: 64},
		{AngleDeg: 10, DistanceMM: 100, Quality: -1},
	}
	for _, s := range cases {
		_, _, err := a.Ingest(s)
		assert.ErrorIs(t, err, ErrInvalidSample, "sample %+v", s)
	}

	// Accumulator state untouched: the next boundary still finds nothing.
	ev, frame, err := a.Ingest(Sample{AngleDeg: 0, DistanceMM: 100, Quality: 10, NewScan: true})
	require.NoError(t, err)
	assert.Equal(t, Accumulating, ev)
	assert.Nil(t, frame)
}

func TestAssemblerStaleFlush(t *testing.T) {
	cfg := testConfig()
	cfg.TargetRefreshHz = 10 // stale after 200ms
	a := NewAssembler(cfg)
	clock, now := fakeClock(time.Unix(1000, 0))
	a.now = clock

	_, _, err := a.Ingest(Sample{AngleDeg: 45, DistanceMM: 1200, Quality: 30})
	require.NoError(t, err)

	// Inside the window, nothing is stale yet.
	assert.Nil(t, a.FlushStale(now.Add(150*time.Millisecond)))

	frame := a.FlushStale(now.Add(201 * time.Millisecond))
	require.NotNil(t, frame)
	assert.False(t, frame.Complete)
	assert.Equal(t, 1, frame.PopulatedCount())

	// The accumulator restarted; nothing left to flush or to close.
	assert.Nil(t, a.FlushStale(now.Add(time.Hour)))
	ev, done, err := a.Ingest(Sample{AngleDeg: 0, DistanceMM: 100, Quality: 10, NewScan: true})
	require.NoError(t, err)
	assert.Equal(t, Accumulating, ev)
	assert.Nil(t, done)
}

func TestAssemblerEmptyFlushIsNil(t *testing.T) {
	a := NewAssembler(testConfig())
	if got := a.FlushStale(time.Now().Add(time.Hour)); got != nil {
		t.Fatalf("flush of empty accumulator returned %v, want nil", got)
	}
}

func TestAssemblerDiscard(t *testing.T) {
	a := NewAssembler(testConfig())
	_, _, err := a.Ingest(Sample{AngleDeg: 10, DistanceMM: 500, Quality: 20})
	require.NoError(t, err)

	a.Discard()

	assert.Nil(t, a.FlushStale(time.Now().Add(time.Hour)))
}

func TestFrameBinLayout(t *testing.T) {
	for _, res := range []float64{0.5, 1.0, 7.0, 180.0} {
		f := NewFrame(res, time.Now())
		want := BinCount(res)
		require.Len(t, f.Bins, want, "resolution %.1f", res)
		for i, bin := range f.Bins {
			assert.Equal(t, float64(i)*res, bin.AngleDeg)
			assert.False(t, bin.Populated)
		}
	}
	// Non-divisor resolutions round the bin count up.
	if got := BinCount(7.0); got != 52 {
		t.Fatalf("BinCount(7.0) = %d, want 52", got)
	}
}

func TestIngestErrorIsInvalidSampleOnly(t *testing.T) {
	a := NewAssembler(testConfig())
	_, _, err := a.Ingest(Sample{AngleDeg: 361, DistanceMM: 1, Quality: 1})
	if !errors.Is(err, ErrInvalidSample) {
		t.Fatalf("err = %v, want ErrInvalidSample", err)
	}
}
