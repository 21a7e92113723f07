package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jgoulah/personadash/pkg/models"
)

// Metrics holds the dashboard's Prometheus collectors
type Metrics struct {
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	runs       *prometheus.CounterVec
	households *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "personadash",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "personadash",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "personadash",
			Name:      "pipeline_runs_total",
			Help:      "Classification runs by source kind and outcome.",
		}, []string{"kind", "outcome"}),
		households: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "personadash",
			Name:      "households",
			Help:      "Households per persona in the auto-loaded dataset.",
		}, []string{"persona"}),
	}
	reg.MustRegister(m.requests, m.duration, m.runs, m.households)
	return m
}

// Middleware records request counts and latency by chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveRun counts one pipeline run
func (m *Metrics) ObserveRun(kind string, err error) {
	m.runs.WithLabelValues(kind, outcome(err)).Inc()
}

// SetHouseholds publishes the persona counts of a summary
func (m *Metrics) SetHouseholds(s models.Summary) {
	m.households.Reset()
	for _, c := range s.Personas {
		m.households.WithLabelValues(string(c.Persona)).Set(float64(c.Households))
	}
}
