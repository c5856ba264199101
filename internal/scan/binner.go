package scan

import "math"

// binner quantises samples into a frame's angular slots.
type binner struct {
	resolutionDeg float64
}

// fold places one sample into its bin. If the bin already holds a reading
// from this revolution, the higher-quality sample wins; on equal quality
// the later sample wins so the bin tracks the freshest measurement.
// Returns true when the bin was previously unpopulated.
func (b binner) fold(f *Frame, s Sample) bool {
	i := int(math.Floor(s.AngleDeg/b.resolutionDeg)) % len(f.Bins)
	bin := &f.Bins[i]
	if bin.Populated && s.Quality < bin.Quality {
		return false
	}
	fresh := !bin.Populated
	bin.DistanceMM = s.DistanceMM
	bin.Quality = s.Quality
	bin.Populated = true
	return fresh
}
