package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Engine metrics
	analysesTotal    *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	seriesBars       prometheus.Histogram
	signalsTotal     *prometheus.CounterVec
	verdictsTotal    *prometheus.CounterVec
	archiveWrites    *prometheus.CounterVec
	reportsStored    prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taengine_analyses_total",
			Help: "Total number of analyses by outcome",
		},
		[]string{"status"},
	)
	r.analysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taengine_analysis_duration_seconds",
			Help:    "Time to analyze one series",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
	r.seriesBars = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taengine_series_bars",
			Help:    "Number of bars per analyzed series",
			Buckets: []float64{1, 10, 20, 60, 120, 250, 500, 1000, 2500, 5000},
		},
	)
	r.signalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taengine_signals_total",
			Help: "Single-indicator signals by indicator and action",
		},
		[]string{"indicator", "action"},
	)
	r.verdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taengine_verdicts_total",
			Help: "Composite verdicts",
		},
		[]string{"verdict"},
	)
	r.archiveWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taengine_archive_writes_total",
			Help: "Report archive writes by outcome",
		},
		[]string{"status"},
	)
	r.reportsStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "taengine_reports_stored",
			Help: "Reports held in the in-memory store",
		},
	)

	reg.MustRegister(r.analysesTotal)
	reg.MustRegister(r.analysisDuration)
	reg.MustRegister(r.seriesBars)
	reg.MustRegister(r.signalsTotal)
	reg.MustRegister(r.verdictsTotal)
	reg.MustRegister(r.archiveWrites)
	reg.MustRegister(r.reportsStored)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordAnalysis records one analysis outcome. Duration is only observed
// for analyses that ran.
func (r *Registry) RecordAnalysis(status string, duration float64, bars int) {
	r.analysesTotal.WithLabelValues(status).Inc()
	if duration > 0 {
		r.analysisDuration.Observe(duration)
	}
	if bars > 0 {
		r.seriesBars.Observe(float64(bars))
	}
}

// RecordSignal records a single-indicator signal.
func (r *Registry) RecordSignal(indicator, action string) {
	r.signalsTotal.WithLabelValues(indicator, action).Inc()
}

// RecordVerdict records a composite verdict.
func (r *Registry) RecordVerdict(verdict string) {
	r.verdictsTotal.WithLabelValues(verdict).Inc()
}

// RecordArchive records a report archive write.
func (r *Registry) RecordArchive(status string) {
	r.archiveWrites.WithLabelValues(status).Inc()
}

// SetReportsStored sets the report store size.
func (r *Registry) SetReportsStored(n int) {
	r.reportsStored.Set(float64(n))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
