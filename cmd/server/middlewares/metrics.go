package middlewares

import (
	"strconv"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const MetricsPath = "/metrics"

// HubStats exposes the change hub counters
type HubStats interface {
	Stats() (subscribers int, dropped uint64)
}

// routeLabel keeps label cardinality bounded: matched requests report the
// route template, unmatched ones the raw path.
func routeLabel(c *fiber.Ctx) string {
	if route := c.Route(); route != nil && route.Path != "/" {
		return route.Path
	}
	return c.Path()
}

// statusClass folds a status code into "2xx", "4xx" or "5xx"
func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return strconv.Itoa(status)
}

func hubCollectors(hub HubStats) []prometheus.Collector {
	subscribers := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "notedash_change_subscribers",
			Help: "Open change-stream subscriptions",
		},
		func() float64 {
			n, _ := hub.Stats()
			return float64(n)
		},
	)
	dropped := prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "notedash_change_events_dropped_total",
			Help: "Change events dropped because a subscriber outbox was full",
		},
		func() float64 {
			_, d := hub.Stats()
			return float64(d)
		},
	)
	return []prometheus.Collector{subscribers, dropped}
}

// AttachMetrics registers request metrics and, when hub is non-nil, the
// change hub gauges on a registry private to app, then serves them on
// MetricsPath.
func AttachMetrics(app *fiber.App, hub HubStats) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	reqDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	reqTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	reg.MustRegister(reqDuration, reqTotal)
	if hub != nil {
		reg.MustRegister(hubCollectors(hub)...)
	}

	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// render the error now so the recorded status is the one sent
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		labels := []string{c.Method(), routeLabel(c), statusClass(c.Response().StatusCode())}
		reqDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		reqTotal.WithLabelValues(labels...).Inc()
		return nil
	})

	app.Get(MetricsPath, adaptor.HTTPHandler(
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)
	return reg
}
