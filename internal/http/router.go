package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/eventops-backend/internal/http/handlers"
	httpMW "github.com/yungbote/eventops-backend/internal/http/middleware"
	"github.com/yungbote/eventops-backend/internal/observability"
	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	// TracingEnabled adds otelgin spans.
	TracingEnabled bool
	// Metrics is nil when metrics are disabled; /metrics is then not served.
	Metrics *observability.Metrics
	// RateLimiter is nil when redis is not configured.
	RateLimiter httpMW.Limiter

	AuthMiddleware *httpMW.AuthMiddleware
	SegmentHandler *httpH.SegmentHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		name := cfg.ServiceName
		if name == "" {
			name = "eventops-backend"
		}
		r.Use(otelgin.Middleware(name))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.AttachRequestContext())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// CRM segments
		if cfg.SegmentHandler != nil {
			crm := protected.Group("/crm/segments")
			limited := crm.Group("")
			if cfg.RateLimiter != nil {
				limited.Use(httpMW.RateLimit(cfg.Log, cfg.RateLimiter, cfg.Metrics))
			}
			limited.POST("/evaluate", cfg.SegmentHandler.Evaluate)
			limited.POST("/:id/evaluate", cfg.SegmentHandler.EvaluateSaved)

			crm.POST("", cfg.SegmentHandler.Create)
			crm.GET("", cfg.SegmentHandler.List)
			crm.GET("/:id", cfg.SegmentHandler.Get)
			crm.DELETE("/:id", cfg.SegmentHandler.Delete)
		}
	}

	return r
}
