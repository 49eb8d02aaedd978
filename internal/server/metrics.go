package server

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the Prometheus collectors for the server. Each server
// owns its registry so tests can spin up instances side by side.
type metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	ideasCaptured   *prometheus.CounterVec
	webhookFailures prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plan",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		ideasCaptured: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plan",
			Name:      "ideas_captured_total",
			Help:      "Ideas captured by source.",
		}, []string{"source"}),
		webhookFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "plan",
			Name:      "webhook_failures_total",
			Help:      "Telegram webhook requests that failed to store an idea.",
		}),
	}
	m.registry.MustRegister(m.httpRequests, m.ideasCaptured, m.webhookFailures)
	return m
}

func (m *metrics) observeRequest(method, path string, status int) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// Capture sources, used as the source label on ideasCaptured.
const (
	sourceManual   = "manual"
	sourceVoice    = "voice"
	sourceTelegram = "telegram"
)
