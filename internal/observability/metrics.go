package observability

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Oracle names used as metric labels.
const (
	OracleSpeech = "speech"
	OracleText   = "text"
	OracleEmail  = "email"
)

// Metrics holds the pipeline and API collectors. A nil *Metrics is valid and
// records nothing, so stages can be built without instrumentation.
type Metrics struct {
	reg prometheus.Gatherer

	oracleRequests    *prometheus.CounterVec
	oracleLatency     *prometheus.HistogramVec
	stageFallbacks    *prometheus.CounterVec
	appointmentResult *prometheus.CounterVec
	apiRequests       *prometheus.CounterVec
	apiLatency        *prometheus.HistogramVec
	apiInflight       prometheus.Gauge
}

// NewMetrics registers collectors on reg. Use prometheus.NewRegistry() in tests.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		reg: reg,
		oracleRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinicscribe_oracle_requests_total",
				Help: "External oracle calls by oracle, pipeline stage and outcome.",
			},
			[]string{"oracle", "stage", "outcome"},
		),
		oracleLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clinicscribe_oracle_latency_seconds",
				Help:    "External oracle round-trip latency.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"oracle", "stage"},
		),
		stageFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinicscribe_stage_fallbacks_total",
				Help: "Recoverable stage failures that degraded to a default value.",
			},
			[]string{"stage", "reason"},
		),
		appointmentResult: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinicscribe_appointment_results_total",
				Help: "Appointment processing results by status.",
			},
			[]string{"status"},
		),
		apiRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinicscribe_http_requests_total",
				Help: "HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		apiLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clinicscribe_http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"method", "route"},
		),
		apiInflight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "clinicscribe_http_inflight_requests",
			Help: "In-flight HTTP requests.",
		}),
	}
}

// ObserveOracle records one oracle round trip. err == nil counts as "ok".
func (m *Metrics) ObserveOracle(oracle, stage string, dur time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.oracleRequests.WithLabelValues(label(oracle), label(stage), outcome).Inc()
	if dur > 0 {
		m.oracleLatency.WithLabelValues(label(oracle), label(stage)).Observe(dur.Seconds())
	}
}

func (m *Metrics) IncFallback(stage, reason string) {
	if m == nil {
		return
	}
	m.stageFallbacks.WithLabelValues(label(stage), label(reason)).Inc()
}

func (m *Metrics) IncAppointmentResult(status string) {
	if m == nil {
		return
	}
	m.appointmentResult.WithLabelValues(label(status)).Inc()
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, label(route), status).Inc()
	m.apiLatency.WithLabelValues(method, label(route)).Observe(dur.Seconds())
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.reg == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func label(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}
