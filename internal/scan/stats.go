package scan

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ComputeStats derives point count and min/avg/max distance over the
// populated bins of a frame. An empty frame yields HasRange false; the
// distance fields are deliberately not zero-valued stand-ins, since a
// reported 0 mm would read as "sensor touching a surface".
func ComputeStats(f *Frame) Stats {
	dists := make([]float64, 0, len(f.Bins))
	for i := range f.Bins {
		if f.Bins[i].Populated {
			dists = append(dists, f.Bins[i].DistanceMM)
		}
	}
	if len(dists) == 0 {
		return Stats{}
	}
	return Stats{
		PointCount: len(dists),
		MinMM:      floats.Min(dists),
		AvgMM:      stat.Mean(dists, nil),
		MaxMM:      floats.Max(dists),
		HasRange:   true,
	}
}
