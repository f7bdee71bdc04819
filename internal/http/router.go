package http

import (
	"log/slog"

	"github.com/geocoder89/eventbooking/internal/http/handlers"
	"github.com/geocoder89/eventbooking/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterDeps struct {
	Env         string
	ServiceName string
	Log         *slog.Logger
	Prom        *observability.Prom
	Gatherer    prometheus.Gatherer
	Ready       handlers.ReadyFunc
}

// NewRouter builds the ops server: liveness, readiness and metrics.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(deps.ServiceName))
	r.Use(RequestID())
	r.Use(RequestLogger(deps.Log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	h := handlers.NewHealthHandler(deps.Ready)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	return r
}
