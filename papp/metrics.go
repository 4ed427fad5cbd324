package papp

import (
	"net/http"
	"strconv"
	"time"

	"github.com/advdv/phttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus instruments for the request pipeline on a
// private registry. Safe labels only (method, status) to avoid path
// cardinality explosions.
type Metrics struct {
	reg     *prometheus.Registry
	handler http.Handler

	inflight             prometheus.Gauge
	reqTotal             *prometheus.CounterVec
	reqDur               *prometheus.HistogramVec
	ratelimitDeniedTotal prometheus.Counter
}

// NewMetrics returns a fresh registry with standard collectors plus the
// pipeline instruments.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests",
		}),
		reqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method and status",
		}, []string{"method", "status"}),
		reqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency by method",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method"}),
		ratelimitDeniedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_requests_rate_limited_total",
			Help: "Total requests rejected by the rate limiter",
		}),
	}
	reg.MustRegister(
		m.inflight,
		m.reqTotal,
		m.reqDur,
		m.ratelimitDeniedTotal,
	)

	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	m.reg = reg
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// Middleware measures inflight, totals and latency for every chain
// traversal. It runs before every other stage so rejections produced further
// down (401, 403, 429) are counted too; chain errors count under the status
// the transport bridge will answer with.
func (m *Metrics) Middleware() phttp.Middleware {
	return phttp.NewMiddlewareWithPriority("metrics", PriorityMetrics,
		func(ctx *phttp.Context, next phttp.Next) (*phttp.Response, error) {
			start := time.Now()

			m.inflight.Inc()
			defer m.inflight.Dec()

			resp, err := next.Handle(ctx)

			status := 0
			if err != nil {
				status = phttp.KindOf(err).HTTPStatus()
			} else {
				status = resp.Status()
			}

			method := string(ctx.Request.Method())
			m.reqTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
			m.reqDur.WithLabelValues(method).Observe(time.Since(start).Seconds())

			if status == http.StatusTooManyRequests {
				m.ratelimitDeniedTotal.Inc()
			}

			return resp, err
		})
}
