package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	// DB
	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec
	ConnectAttempts *prometheus.CounterVec

	// writes rejected before reaching storage
	ValidationFailures *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventbooking",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed by the ops server",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "eventbooking",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route", "status"},
		),
		DbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "eventbooking",
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "DB operation latency (logical op, not raw query)",
				Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5},
			},
			[]string{"op", "status"},
		),
		DbErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventbooking",
				Subsystem: "db",
				Name:      "errors_total",
				Help:      "DB errors by logical op and class.",
			},
			[]string{"op", "class"},
		),
		ConnectAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventbooking",
				Subsystem: "db",
				Name:      "connect_attempts_total",
				Help:      "Connection attempts by backend and result.",
			},
			[]string{"backend", "result"}, // result=ok|error
		),
		ValidationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventbooking",
				Name:      "validation_failures_total",
				Help:      "Records rejected by validation, by entity and kind.",
			},
			[]string{"entity", "kind"}, // kind=field|reference
		),
	}
	reg.MustRegister(p.RequestsTotal, p.RequestsDuration, p.DbQueryDuration, p.DbErrorsTotal, p.ConnectAttempts, p.ValidationFailures)

	return p
}

func (p *Prom) ObserveConnect(backend, result string) {
	p.ConnectAttempts.WithLabelValues(backend, result).Inc()
}

func (p *Prom) ObserveValidation(entity, kind string) {
	p.ValidationFailures.WithLabelValues(entity, kind).Inc()
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		status := strconv.Itoa(ctx.Writer.Status())
		method := ctx.Request.Method

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
	}
}
