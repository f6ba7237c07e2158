package metrics

import (
	"net/http"

	"timeline-compositor/internal/timeline"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the compositor. It also
// receives work counts from compositions as a timeline.Recorder.
type Metrics struct {
	registry              *prometheus.Registry
	requestsTotal         *prometheus.CounterVec
	errorsTotal           prometheus.Counter
	reconfigurationsTotal prometheus.Counter
	deactivationsTotal    prometheus.Counter
	linkOpsTotal          *prometheus.CounterVec
	propertyChangesTotal  *prometheus.CounterVec
	compositions          prometheus.Gauge
}

var _ timeline.Recorder = (*Metrics)(nil)

// New creates and registers Prometheus metrics for the compositor.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "compositor_requests_total",
		Help: "Total number of HTTP requests received",
	}, []string{"method", "route", "code"})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "compositor_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	reconfigurationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "compositor_reconfigurations_total",
		Help: "Total number of stack resolutions applied to the graph",
	})
	deactivationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "compositor_deactivations_total",
		Help: "Total number of objects deactivated by reconfiguration",
	})
	linkOpsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "compositor_link_ops_total",
		Help: "Total number of link and unlink operations issued to the graph",
	}, []string{"action"})
	propertyChangesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "compositor_property_changes_total",
		Help: "Total number of child property changes handled by compositions",
	}, []string{"property"})
	compositions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "compositor_compositions",
		Help: "Number of compositions held by the repository",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		reconfigurationsTotal,
		deactivationsTotal,
		linkOpsTotal,
		propertyChangesTotal,
		compositions,
	)

	return &Metrics{
		registry:              registry,
		requestsTotal:         requestsTotal,
		errorsTotal:           errorsTotal,
		reconfigurationsTotal: reconfigurationsTotal,
		deactivationsTotal:    deactivationsTotal,
		linkOpsTotal:          linkOpsTotal,
		propertyChangesTotal:  propertyChangesTotal,
		compositions:          compositions,
	}
}

// ObserveRequest counts one HTTP request and, for status >= 400, one error.
func (m *Metrics) ObserveRequest(method, route string, status int) {
	m.requestsTotal.WithLabelValues(method, route, statusClass(status)).Inc()
	if status >= http.StatusBadRequest {
		m.errorsTotal.Inc()
	}
}

// SetCompositions sets the compositions gauge.
func (m *Metrics) SetCompositions(n int) {
	m.compositions.Set(float64(n))
}

// Reconfigured implements timeline.Recorder.
func (m *Metrics) Reconfigured(_ timeline.ObjectID, _, deactivated int) {
	m.reconfigurationsTotal.Inc()
	m.deactivationsTotal.Add(float64(deactivated))
}

// LinkOp implements timeline.Recorder.
func (m *Metrics) LinkOp(action timeline.LinkAction) {
	m.linkOpsTotal.WithLabelValues(action.String()).Inc()
}

// PropertyChanged implements timeline.Recorder.
func (m *Metrics) PropertyChanged(prop timeline.Property) {
	m.propertyChangesTotal.WithLabelValues(prop.String()).Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		h.ServeHTTP(w, r)
	})
}
