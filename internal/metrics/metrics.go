package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "freshbuy"

// Checkout outcomes.
const (
	OutcomeSucceeded       = "succeeded"
	OutcomeAlreadyVerified = "already_verified"
	OutcomeNotSuccessful   = "not_successful"
	OutcomeProviderError   = "provider_error"
	OutcomeFailed          = "failed"
)

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

type CheckoutMetrics struct {
	Operations   *prometheus.CounterVec
	StockSkipped prometheus.Counter
	ProviderMS   *prometheus.HistogramVec
}

type Metrics struct {
	Server   *ServerMetrics
	Checkout *CheckoutMetrics
	gatherer prometheus.Gatherer
}

// New creates the service metrics and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"route"})

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "operations_total",
		Help:      "Checkout initializations and verifications by outcome.",
	}, []string{"operation", "outcome"})
	stockSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "stock_decrement_skipped_total",
		Help:      "Order lines whose stock decrement was skipped for insufficient stock.",
	})
	provider := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "provider_duration_ms",
		Help:      "Payment provider call latency in milliseconds.",
		Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"operation"})

	reg.MustRegister(requests, latency, operations, stockSkipped, provider)

	return &Metrics{
		Server: &ServerMetrics{Requests: requests, LatencyMS: latency},
		Checkout: &CheckoutMetrics{
			Operations:   operations,
			StockSkipped: stockSkipped,
			ProviderMS:   provider,
		},
		gatherer: reg,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// The checkout recorders accept a nil receiver so services can run without metrics.

func (c *CheckoutMetrics) Observe(operation, outcome string) {
	if c == nil {
		return
	}
	c.Operations.WithLabelValues(operation, outcome).Inc()
}

func (c *CheckoutMetrics) ObserveProvider(operation string, ms float64) {
	if c == nil {
		return
	}
	c.ProviderMS.WithLabelValues(operation).Observe(ms)
}

func (c *CheckoutMetrics) AddStockSkipped(n int) {
	if c == nil || n == 0 {
		return
	}
	c.StockSkipped.Add(float64(n))
}
