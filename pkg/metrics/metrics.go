// Package metrics exposes HTTP and authentication metrics to prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notesapp"

type Metrics struct {
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	authRejections *prometheus.CounterVec
	sweptTokens    prometheus.Counter
	gatherer       prometheus.Gatherer
}

// New registers the collectors on reg. revoked reports the current size of
// the revocation store and may be nil.
func New(reg *prometheus.Registry, revoked func() int) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_rejections_total",
			Help:      "Requests rejected by the auth middleware, by reason.",
		}, []string{"reason"}),
		sweptTokens: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revoked_tokens_swept_total",
			Help:      "Lapsed revocation entries removed by the sweeper.",
		}),
		gatherer: reg,
	}
	if revoked != nil {
		f.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "revoked_tokens",
			Help:      "Entries currently held in the revocation store.",
		}, func() float64 { return float64(revoked()) })
	}
	return m
}

// AuthRejected counts one rejection.
func (m *Metrics) AuthRejected(reason string) {
	m.authRejections.WithLabelValues(reason).Inc()
}

// TokensSwept adds the result of one sweep pass.
func (m *Metrics) TokensSwept(n int) {
	if n > 0 {
		m.sweptTokens.Add(float64(n))
	}
}

// Gin records count and latency per matched route. Unmatched requests share
// the "unmatched" route label to keep cardinality bounded.
func (m *Metrics) Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
