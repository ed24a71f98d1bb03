package engine

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "netblock"
	subsystem = "engine"
)

var (
	linesTotal   prometheus.Counter
	resultsTotal *prometheus.CounterVec
	blockedGauge prometheus.Gauge
	metricsOnce  sync.Once
)

func initMetrics() {
	metricsOnce.Do(func() {
		var registry prometheus.Registerer = prometheus.DefaultRegisterer

		if testing.Testing() {
			// isolated registry so parallel tests do not collide
			registry = prometheus.NewRegistry()
		}

		linesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "lines_total",
			Help:      "Total number of input lines processed.",
		})

		resultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "results_total",
			Help:      "Processed lines by outcome.",
		}, []string{"result"})

		blockedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "blocked_networks",
			Help:      "Number of networks in the blocked set.",
		})

		registry.MustRegister(linesTotal, resultsTotal, blockedGauge)
	})
}

func observe(result Result, blocked int) {
	if linesTotal == nil {
		return
	}
	linesTotal.Inc()
	resultsTotal.WithLabelValues(result.String()).Inc()
	blockedGauge.Set(float64(blocked))
}
