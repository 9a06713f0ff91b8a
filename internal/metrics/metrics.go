// Package metrics exposes the service's prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Registry *prometheus.Registry

	AuthAttempts    *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New builds a registry holding the go and process collectors plus the
// service counters.
func New(service string) *Metrics {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"service": service}

	m := &Metrics{
		Registry: reg,
		AuthAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "auth_attempts_total",
			Help:        "Login and refresh attempts by operation and result.",
			ConstLabels: labels,
		}, []string{"op", "result"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "events_published_total",
			Help:        "Domain events handed to the broker by topic and result.",
			ConstLabels: labels,
		}, []string{"topic", "result"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency by route, method and status.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.AuthAttempts,
		m.EventsPublished,
		m.RequestDuration,
	)
	return m
}

func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}

// ObserveAuth counts one login or refresh attempt. A nil receiver is a no-op.
func (m *Metrics) ObserveAuth(op, result string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(op, result).Inc()
}

func (m *Metrics) ObservePublish(topic string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(topic, result).Inc()
}

// Middleware records the latency of every request under its route pattern.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.RequestDuration.
				WithLabelValues(route, c.Request().Method, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
