package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bot's Prometheus collectors. A nil *Metrics is valid and
// records nothing, so components can be built without it in tests.
type Metrics struct {
	Dispatch        *prometheus.CounterVec   // invocations by command and terminal outcome
	HandlerDuration *prometheus.HistogramVec // time spent inside handlers
	SessionsActive  prometheus.Gauge         // open pagination sessions
	Upstream        *prometheus.CounterVec   // upstream API calls by endpoint and status
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Dispatch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nvbot_dispatch_total",
			Help: "Command invocations by terminal outcome",
		}, []string{"command", "outcome"}),
		HandlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nvbot_handler_duration_seconds",
			Help:    "Command handler execution time",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 45},
		}, []string{"command"}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nvbot_pagination_sessions_active",
			Help: "Currently open pagination sessions",
		}),
		Upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nvbot_upstream_requests_total",
			Help: "Requests to upstream APIs by endpoint and status",
		}, []string{"endpoint", "status"}),
	}

	reg.MustRegister(m.Dispatch, m.HandlerDuration, m.SessionsActive, m.Upstream)
	return m
}

func (m *Metrics) ObserveDispatch(command, outcome string) {
	if m == nil {
		return
	}
	m.Dispatch.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) ObserveHandler(command string, seconds float64) {
	if m == nil {
		return
	}
	m.HandlerDuration.WithLabelValues(command).Observe(seconds)
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsActive.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
}

func (m *Metrics) ObserveUpstream(endpoint, status string) {
	if m == nil {
		return
	}
	m.Upstream.WithLabelValues(endpoint, status).Inc()
}
