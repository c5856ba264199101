package viz

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// handleScatter3D renders the current frame as an orbitable 3D scatter.
// The scan plane sits at z=0; the view exists for parity with the 2D
// chart plus mouse-driven rotation and zoom in the browser.
func (s *Server) handleScatter3D(w http.ResponseWriter, r *http.Request) {
	f, st, ok := s.frames.Published()
	if !ok {
		s.writeJSONError(w, http.StatusNotFound, "no frame published yet")
		return
	}

	data := make([]opts.Chart3DData, 0, st.PointCount+1)
	for i := range f.Bins {
		bin := &f.Bins[i]
		if !bin.Populated {
			continue
		}
		x, y := polarToScreenXY(bin.AngleDeg, bin.DistanceMM)
		data = append(data, opts.Chart3DData{Value: []interface{}{x, y, 0.0, bin.DistanceMM}})
	}
	// Mark the sensor position at the origin.
	data = append(data, opts.Chart3DData{Value: []interface{}{0.0, 0.0, 0.0, 0.0}})

	scatter := charts.NewScatter3D()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "scanview 3D", Theme: "dark", Width: "1200px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "360° range scan (3D)",
			Subtitle: fmt.Sprintf("frame=%s points=%d/%d drag to orbit, wheel to zoom", f.ID, st.PointCount, len(f.Bins)),
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(s.cfg.MaxDistanceMM),
			Dimension:  "3",
			InRange:    &opts.VisualMapInRange{Color: distanceGradient},
		}),
	)
	scatter.AddSeries("scan", data)

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
