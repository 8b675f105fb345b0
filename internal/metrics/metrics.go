// Package metrics exposes prometheus collectors for HTTP traffic and interest side effects.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"matchwell/backend/internal/dispatch"
)

// Metrics holds the service collectors.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	events          *prometheus.CounterVec
	dropped         *prometheus.CounterVec
	failures        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"method", "path"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interest_side_effects_total",
				Help: "Side effects delivered by kind and topic",
			},
			[]string{"kind", "topic"},
		),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interest_side_effects_dropped_total",
				Help: "Side effects dropped because the dispatch queue was full or closed",
			},
			[]string{"kind"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interest_side_effect_failures_total",
				Help: "Side effects a sink failed to handle",
			},
			[]string{"sink", "kind"},
		),
	}
	reg.MustRegister(m.requests, m.requestDuration, m.events, m.dropped, m.failures)
	return m
}

// Middleware records request counts and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Name, Accepts and Handle make Metrics a dispatch.Sink counting every delivered event.
func (m *Metrics) Name() string { return "metrics" }

func (m *Metrics) Accepts(dispatch.Kind) bool { return true }

func (m *Metrics) Handle(_ context.Context, ev dispatch.Event) error {
	m.events.WithLabelValues(string(ev.Kind), ev.Topic).Inc()
	return nil
}

// EventDropped implements dispatch.Observer.
func (m *Metrics) EventDropped(ev dispatch.Event) {
	m.dropped.WithLabelValues(string(ev.Kind)).Inc()
}

// SinkFailed implements dispatch.Observer.
func (m *Metrics) SinkFailed(sink string, ev dispatch.Event) {
	m.failures.WithLabelValues(sink, string(ev.Kind)).Inc()
}
