// Package viz renders published scan frames: a websocket feed for the
// live browser view, go-echarts polar and 3D debug pages, and a gonum
// PNG snapshot. The pipeline only sees the scan.Renderer interface and
// never learns which views are attached.
package viz

import (
	"time"

	"github.com/banshee-data/scanview/internal/scan"
)

// FramePayload is the JSON shape pushed to browser clients and served by
// the frame API. Only populated bins are carried; an absent angular slot
// means "no data there", so it is simply omitted.
type FramePayload struct {
	FrameID    string         `json:"frame_id"`
	CapturedAt time.Time      `json:"captured_at"`
	Complete   bool           `json:"complete"`
	BinCount   int            `json:"bin_count"`
	Points     []PointPayload `json:"points"`
	Stats      StatsPayload   `json:"stats"`
}

// PointPayload is one populated bin.
type PointPayload struct {
	AngleDeg   float64 `json:"angle_deg"`
	DistanceMM float64 `json:"distance_mm"`
	Quality    int     `json:"quality"`
}

// StatsPayload mirrors scan.Stats with the distance aggregates omitted
// when no bin is populated, never zero-filled.
type StatsPayload struct {
	PointCount int      `json:"point_count"`
	MinMM      *float64 `json:"min_mm,omitempty"`
	AvgMM      *float64 `json:"avg_mm,omitempty"`
	MaxMM      *float64 `json:"max_mm,omitempty"`
}

// NewFramePayload converts a published frame and its statistics into the
// wire shape.
func NewFramePayload(f *scan.Frame, st scan.Stats) FramePayload {
	points := make([]PointPayload, 0, st.PointCount)
	for i := range f.Bins {
		bin := &f.Bins[i]
		if !bin.Populated {
			continue
		}
		points = append(points, PointPayload{
			AngleDeg:   bin.AngleDeg,
			DistanceMM: bin.DistanceMM,
			Quality:    bin.Quality,
		})
	}
	payload := FramePayload{
		FrameID:    f.ID,
		CapturedAt: f.CapturedAt,
		Complete:   f.Complete,
		BinCount:   len(f.Bins),
		Points:     points,
		Stats:      StatsPayload{PointCount: st.PointCount},
	}
	if st.HasRange {
		payload.Stats.MinMM = &st.MinMM
		payload.Stats.AvgMM = &st.AvgMM
		payload.Stats.MaxMM = &st.MaxMM
	}
	return payload
}
