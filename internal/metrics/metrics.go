// Package metrics holds the Prometheus collectors for HTTP traffic and order flow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its own registry so tests can build as many as they like.
// All recording methods are safe on a nil *Metrics.
type Metrics struct {
	ServiceName string
	Registry    *prometheus.Registry

	requestCounter    *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	statusCategory    *prometheus.CounterVec
	ordersPlaced      *prometheus.CounterVec
	stockFailures     prometheus.Counter
	statusTransitions *prometheus.CounterVec
	logins            *prometheus.CounterVec
	liveClients       *prometheus.GaugeVec
}

// New creates and registers the collectors for serviceName.
func New(serviceName string) *Metrics {
	m := &Metrics{
		ServiceName: serviceName,
		Registry:    prometheus.NewRegistry(),

		requestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path", "status"}),

		statusCategory: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_status_category_total",
			Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
		}, []string{"service", "category", "method", "path"}),

		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pub_orders_placed_total",
			Help: "Orders created, by payment method",
		}, []string{"payment"}),

		stockFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pub_stock_decrement_failures_total",
			Help: "Stock decrements that failed after an order was placed",
		}),

		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pub_order_status_transitions_total",
			Help: "Order status changes, by source and target status",
		}, []string{"from", "to"}),

		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pub_logins_total",
			Help: "Login attempts, by requested role and outcome",
		}, []string{"role", "outcome"}),

		liveClients: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pub_live_clients",
			Help: "Connected live snapshot streams, by collection",
		}, []string{"collection"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestCounter,
		m.requestDuration,
		m.statusCategory,
		m.ordersPlaced,
		m.stockFailures,
		m.statusTransitions,
		m.logins,
		m.liveClients,
	)
	return m
}

func category(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return ""
}

// Middleware records request count, duration and status category per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		statusStr := strconv.Itoa(status)

		m.requestCounter.WithLabelValues(m.ServiceName, method, path, statusStr).Inc()
		if cat := category(status); cat != "" {
			m.statusCategory.WithLabelValues(m.ServiceName, cat, method, path).Inc()
		}
		m.requestDuration.WithLabelValues(m.ServiceName, method, path, statusStr).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) OrderPlaced(payment string) {
	if m == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(payment).Inc()
}

func (m *Metrics) StockDecrementFailed() {
	if m == nil {
		return
	}
	m.stockFailures.Inc()
}

func (m *Metrics) StatusTransition(from, to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) Login(role, outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(role, outcome).Inc()
}

// LiveClientConnected increments the stream gauge and returns the matching decrement.
func (m *Metrics) LiveClientConnected(collection string) func() {
	if m == nil {
		return func() {}
	}
	g := m.liveClients.WithLabelValues(collection)
	g.Inc()
	return g.Dec
}
