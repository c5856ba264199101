package viz

import (
	"bytes"
	"fmt"
	"math"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// viridis-style gradient used by both echarts views, distance-coloured.
var distanceGradient = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// handlePolar renders a one-shot scatter (HTML) of the current frame,
// converted polar to XY with 0 degrees up and angles running clockwise.
// Refresh the page for a new frame; the live view on / is the websocket
// canvas.
func (s *Server) handlePolar(w http.ResponseWriter, r *http.Request) {
	f, st, ok := s.frames.Published()
	if !ok {
		s.writeJSONError(w, http.StatusNotFound, "no frame published yet")
		return
	}

	data := make([]opts.ScatterData, 0, st.PointCount)
	for i := range f.Bins {
		bin := &f.Bins[i]
		if !bin.Populated {
			continue
		}
		x, y := polarToScreenXY(bin.AngleDeg, bin.DistanceMM)
		data = append(data, opts.ScatterData{Value: []interface{}{x, y, bin.DistanceMM}})
	}

	pad := s.cfg.MaxDistanceMM * 1.05

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "scanview polar", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "360° range scan",
			Subtitle: fmt.Sprintf("frame=%s points=%d/%d complete=%t", f.ID, st.PointCount, len(f.Bins), f.Complete),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (mm)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (mm)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(s.cfg.MaxDistanceMM),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: distanceGradient},
		}),
	)
	scatter.AddSeries("scan", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// polarToScreenXY maps a sensor reading into display coordinates with 0
// degrees at the top and angles increasing clockwise, matching the
// sensor's mounting convention.
func polarToScreenXY(angleDeg, distanceMM float64) (float64, float64) {
	theta := (90.0 - angleDeg) * math.Pi / 180.0
	return distanceMM * math.Cos(theta), distanceMM * math.Sin(theta)
}
