package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── HTTP metrics ────────────────────────────────────────────────────────────

var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cashdesk",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Total HTTP requests by method, route and status.",
}, []string{"method", "route", "status"})

var httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "cashdesk",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by method and route.",
	Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
}, []string{"method", "route"})

// ─── Domain metrics ──────────────────────────────────────────────────────────

// SessionsClosed counts closures by outcome (balanced / discrepant).
var SessionsClosed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cashdesk",
	Subsystem: "session",
	Name:      "closed_total",
	Help:      "Total cash sessions closed, by reconciliation outcome.",
}, []string{"outcome"})

// LedgerEntriesTotal counts ledger appends by entry type.
var LedgerEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cashdesk",
	Subsystem: "ledger",
	Name:      "entries_total",
	Help:      "Total ledger entries appended, by type.",
}, []string{"type"})

// Metrics records request counts and latency per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status()),
		).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
	}
}
