package influx

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	LinesWritten  prometheus.Counter
	PointsDropped prometheus.Counter
	WriteRequests *prometheus.CounterVec
}

// NewMetrics creates the write metrics of a client and registers them if reg
// is not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := Metrics{
		LinesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "influx_client",
			Name:      "lines_written_total",
			Help:      "Number of protocol lines accepted by the server.",
		}),

		PointsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "influx_client",
			Name:      "points_dropped_total",
			Help:      "Number of points without measurement or field.",
		}),

		WriteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "influx_client",
			Name:      "write_requests_total",
			Help:      "Number of write requests by result.",
		}, []string{"result"}),
	}

	if reg != nil {
		collectors := []prometheus.Collector{
			m.LinesWritten,
			m.PointsDropped,
			m.WriteRequests,
		}

		for _, c := range collectors {
			if err := reg.Register(c); err != nil {
				return nil, fmt.Errorf("cannot register metric: %w", err)
			}
		}
	}

	return &m, nil
}
