package nasc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the container's Prometheus collectors.
// A nil *metrics records nothing.
type metrics struct {
	resolutions   *prometheus.CounterVec
	buildDuration prometheus.Histogram
	bindings      prometheus.Gauge
}

func newMetrics() *metrics {
	return &metrics{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nasc",
				Subsystem: "container",
				Name:      "resolutions_total",
				Help:      "Total number of Get calls, by outcome.",
			},
			[]string{"outcome"},
		),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nasc",
			Subsystem: "container",
			Name:      "build_duration_seconds",
			Help:      "Time spent constructing instances, nested resolutions included.",
			Buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
		}),
		bindings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nasc",
			Subsystem: "container",
			Name:      "bindings",
			Help:      "Number of registered factories and decorators.",
		}),
	}
}

func (m *metrics) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.resolutions, m.buildDuration, m.bindings} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *metrics) cached() {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues("cached").Inc()
}

func (m *metrics) built(start time.Time) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues("built").Inc()
	m.buildDuration.Observe(time.Since(start).Seconds())
}

func (m *metrics) failed() {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues("error").Inc()
}

func (m *metrics) setBindings(n int) {
	if m == nil {
		return
	}
	m.bindings.Set(float64(n))
}
