package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/eventops-backend/internal/http"
	httpH "github.com/yungbote/eventops-backend/internal/http/handlers"
	httpMW "github.com/yungbote/eventops-backend/internal/http/middleware"
	"github.com/yungbote/eventops-backend/internal/observability"
	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health  *httpH.HealthHandler
	Segment *httpH.SegmentHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(db),
		Segment: httpH.NewSegmentHandler(services.Segment),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, clients Clients, metrics *observability.Metrics) *http.Server {
	rc := http.RouterConfig{
		Log:            log,
		ServiceName:    cfg.Otel.ServiceName,
		CORSOrigins:    cfg.CORSOrigins,
		TracingEnabled: cfg.Otel.Enabled,
		Metrics:        metrics,
		AuthMiddleware: middleware.Auth,
		SegmentHandler: handlers.Segment,
		HealthHandler:  handlers.Health,
	}
	if clients.RateLimiter != nil {
		rc.RateLimiter = clients.RateLimiter
	}
	return http.NewServer(":"+cfg.Port, rc)
}
