package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zifybot"

// Result labels for outbound provider actions
const (
	ResultOK            = "ok"
	ResultMisconfigured = "misconfigured"
	ResultUnauthorized  = "unauthorized"
	ResultFailed        = "failed"
	ResultSkipped       = "skipped"
)

// Metrics holds application collectors.
// Nil *Metrics is valid and records nothing
type Metrics struct {
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	webhookEvents *prometheus.CounterVec
	callsDialed   *prometheus.CounterVec
	agentStarts   *prometheus.CounterVec
}

// New registers collectors in reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		webhookEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Webhook events received by event type.",
		}, []string{"event_type"}),

		callsDialed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calls",
			Name:      "dialed_total",
			Help:      "Outbound call attempts by result.",
		}, []string{"result"}),

		agentStarts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calls",
			Name:      "agent_starts_total",
			Help:      "Voice agent start attempts by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) ObserveRequest(method string, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}

	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) WebhookEvent(eventType string) {
	if m == nil {
		return
	}
	if eventType == "" {
		eventType = "unknown"
	}
	m.webhookEvents.WithLabelValues(eventType).Inc()
}

func (m *Metrics) CallDialed(result string) {
	if m == nil {
		return
	}
	m.callsDialed.WithLabelValues(result).Inc()
}

func (m *Metrics) AgentStart(result string) {
	if m == nil {
		return
	}
	m.agentStarts.WithLabelValues(result).Inc()
}

// Handler exposes collectors of g in Prometheus text format
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
