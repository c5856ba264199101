package scan

// Filter drops out-of-range and low-confidence bins and optionally mirrors
// the frame horizontally. Apply is pure: the input frame is never mutated
// and the result is owned by the caller.
type Filter struct {
	cfg Config
}

// NewFilter creates a filter for the given configuration.
func NewFilter(cfg Config) Filter {
	return Filter{cfg: cfg}
}

// Apply returns a filtered copy of the frame. Dropped bins are fully
// cleared, not just flagged, so filtering is idempotent and filtered
// frames compare equal regardless of what they held before.
func (fl Filter) Apply(f *Frame) *Frame {
	out := f.Clone()
	for i := range out.Bins {
		bin := &out.Bins[i]
		if !bin.Populated {
			continue
		}
		if bin.DistanceMM > fl.cfg.MaxDistanceMM || bin.Quality < fl.cfg.MinQuality {
			bin.DistanceMM = 0
			bin.Quality = 0
			bin.Populated = false
		}
	}
	if fl.cfg.MirrorHorizontally {
		out = mirror(out)
	}
	return out
}

// mirror relabels each bin's angle a as (360-a) mod 360 and restores the
// ascending angular order. With evenly spaced slots starting at zero this
// moves the payload of slot i to slot (n-i) mod n while the slot angles
// stay fixed, so mirroring twice is the identity.
func mirror(f *Frame) *Frame {
	out := f.Clone()
	n := len(f.Bins)
	for i := range f.Bins {
		j := (n - i) % n
		out.Bins[j].DistanceMM = f.Bins[i].DistanceMM
		out.Bins[j].Quality = f.Bins[i].Quality
		out.Bins[j].Populated = f.Bins[i].Populated
	}
	return out
}
