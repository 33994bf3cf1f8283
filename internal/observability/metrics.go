package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Load outcomes used as the "outcome" label on ArtifactLoads.
const (
	OutcomeLoaded = "loaded"
	OutcomeFailed = "failed"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a generation pass.
type Metrics struct {
	FilesScanned         prometheus.Counter
	NamespacesDiscovered prometheus.Gauge
	ScanDuration         prometheus.Histogram

	ArtifactsGenerated prometheus.Counter
	ArtifactsSkipped   prometheus.Counter
	ArtifactLoads      *prometheus.CounterVec // labels: outcome={loaded,failed}
}

// NewMetrics creates all generator metrics and registers them with reg. When
// reg already holds the same collectors, from an earlier pass, those are
// reused so counts accumulate across passes.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := Metrics{
		FilesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mocktime",
			Name:      "files_scanned_total",
			Help:      "Source files read while looking for namespace declarations.",
		}),
		NamespacesDiscovered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mocktime",
			Name:      "namespaces_discovered",
			Help:      "Distinct namespaces found by the last scan.",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mocktime",
			Name:      "scan_duration_seconds",
			Help:      "Duration of a source tree scan.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ArtifactsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mocktime",
			Name:      "artifacts_generated_total",
			Help:      "Override artifacts written.",
		}),
		ArtifactsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mocktime",
			Name:      "artifacts_skipped_total",
			Help:      "Override artifacts left untouched because they already existed.",
		}),
		ArtifactLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mocktime",
			Name:      "artifact_loads_total",
			Help:      "Override artifact loads by outcome.",
		}, []string{"outcome"}),
	}

	return &Metrics{
		FilesScanned:         register(reg, m.FilesScanned),
		NamespacesDiscovered: register(reg, m.NamespacesDiscovered),
		ScanDuration:         register(reg, m.ScanDuration),
		ArtifactsGenerated:   register(reg, m.ArtifactsGenerated),
		ArtifactsSkipped:     register(reg, m.ArtifactsSkipped),
		ArtifactLoads:        register(reg, m.ArtifactLoads),
	}
}

// register adds c to reg, returning the collector already registered under
// the same descriptor if there is one. Any other registration error panics,
// as MustRegister would.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}

// NewMetricsForTesting creates Metrics on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
