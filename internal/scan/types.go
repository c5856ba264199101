package scan

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Sample is one raw polar measurement from the rangefinder. Samples are
// immutable once produced and are consumed exactly once by the Assembler.
type Sample struct {
	AngleDeg   float64 // [0, 360)
	DistanceMM float64 // >= 0
	Quality    int     // sensor confidence, 0-63, higher is better
	NewScan    bool    // true on the first sample of a new revolution
}

// Bin is one angular slot of a frame, holding at most one measurement per
// revolution. An unpopulated bin means "no data", never "zero distance".
type Bin struct {
	AngleDeg   float64 `json:"angle_deg"`
	DistanceMM float64 `json:"distance_mm"`
	Quality    int     `json:"quality"`
	Populated  bool    `json:"populated"`
}

// Frame is the set of bins assembled from one revolution of the sensor.
// Frames are mutated in place by the Assembler while accumulating and are
// immutable once published.
type Frame struct {
	ID         string    `json:"id"`
	Bins       []Bin     `json:"bins"`
	CapturedAt time.Time `json:"captured_at"`

	// Complete is false when the frame was force-published by the stale
	// timer before a full revolution boundary was seen.
	Complete bool `json:"complete"`
}

// Stats summarises the populated bins of one frame. When PointCount is
// zero, HasRange is false and the distance fields are meaningless; they
// must never be reported as zero.
type Stats struct {
	PointCount int
	MinMM      float64
	AvgMM      float64
	MaxMM      float64
	HasRange   bool
}

// BinCount returns the number of angular slots at the given resolution.
func BinCount(resolutionDeg float64) int {
	return int(math.Ceil(360.0 / resolutionDeg))
}

// NewFrame allocates an empty frame with evenly spaced, ascending bin
// angles covering [0, 360) at the given resolution.
func NewFrame(resolutionDeg float64, now time.Time) *Frame {
	n := BinCount(resolutionDeg)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].AngleDeg = float64(i) * resolutionDeg
	}
	return &Frame{
		ID:         uuid.NewString(),
		Bins:       bins,
		CapturedAt: now,
	}
}

// Clone returns a deep copy sharing no bin storage with the receiver.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	dup := *f
	dup.Bins = make([]Bin, len(f.Bins))
	copy(dup.Bins, f.Bins)
	return &dup
}

// PopulatedCount returns the number of bins holding a measurement.
func (f *Frame) PopulatedCount() int {
	n := 0
	for i := range f.Bins {
		if f.Bins[i].Populated {
			n++
		}
	}
	return n
}
