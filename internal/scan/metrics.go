package scan

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts pipeline activity for the /metrics endpoint.
type Metrics struct {
	Samples          prometheus.Counter
	InvalidSamples   prometheus.Counter
	MalformedPackets prometheus.Counter
	SourceTimeouts   prometheus.Counter
	FramesBuilt      prometheus.Counter
	FramesStale      prometheus.Counter
	FramesPublished  prometheus.Counter
	FramesDropped    prometheus.Counter
}

// NewMetrics registers pipeline counters with reg. A nil registerer uses
// the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Samples: factory.NewCounter(prometheus.CounterOpts{
			Name: "scanview_samples_total",
			Help: "Raw samples accepted from the sensor.",
		}),
		InvalidSamples: factory.NewCounter(prometheus.CounterOpts{
			Name: "scanview_invalid_samples_total",
			Help: "Samples rejected for an out-of-domain angle, distance or quality.",
		}),
		MalformedPackets: factory.NewCounter(prometheus.CounterOpts{
			Name: "scanview_malformed_packets_total",
			Help: "Undecodable measurement packets skipped on the serial link.",
		}),
		SourceTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "scanview_source_timeouts_total",
			Help: "Source reads that returned no data within the read timeout.",
		}),
		FramesBuilt: factory.NewCounter(prometheus.CounterOpts{
			Name: "scanview_frames_built_total",
			Help: "Frames completed by a revolution boundary.",
		}),
		FramesStale: factory.NewCounter(prometheus.CounterOpts{
			Name: "scanview_frames_stale_total",
			Help: "Partial frames force-published by the stale timer.",
		}),
		FramesPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "scanview_frames_published_total",
			Help: "Frames delivered to renderers.",
		}),
		FramesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "scanview_frames_dropped_total",
			Help: "Frames superseded before a renderer took them.",
		}),
	}
}
