package viz

import (
	"fmt"
	"image/color"
	"net/http"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// handleSnapshot renders the current frame as a PNG scatter, handy for
// saving a still or embedding in reports without a live browser session.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	f, st, ok := s.frames.Published()
	if !ok {
		s.writeJSONError(w, http.StatusNotFound, "no frame published yet")
		return
	}

	pts := make(plotter.XYs, 0, st.PointCount)
	for i := range f.Bins {
		bin := &f.Bins[i]
		if !bin.Populated {
			continue
		}
		x, y := polarToScreenXY(bin.AngleDeg, bin.DistanceMM)
		pts = append(pts, plotter.XY{X: x, Y: y})
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("360° range scan (%d points)", st.PointCount)
	p.X.Label.Text = "X (mm)"
	p.Y.Label.Text = "Y (mm)"
	pad := s.cfg.MaxDistanceMM * 1.05
	p.X.Min, p.X.Max = -pad, pad
	p.Y.Min, p.Y.Max = -pad, pad

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("build scatter: %v", err))
		return
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	scatter.GlyphStyle.Color = color.RGBA{R: 0x26, G: 0x82, B: 0x8e, A: 0xff}
	p.Add(scatter, plotter.NewGrid())

	wt, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, "png")
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("render snapshot: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := wt.WriteTo(w); err != nil {
		// Client went away mid-transfer; nothing to clean up.
		return
	}
}
