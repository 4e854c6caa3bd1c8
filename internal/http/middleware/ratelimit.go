package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	redisclient "github.com/yungbote/eventops-backend/internal/clients/redis"
	"github.com/yungbote/eventops-backend/internal/http/response"
	"github.com/yungbote/eventops-backend/internal/observability"
	"github.com/yungbote/eventops-backend/internal/pkg/ctxutil"
	apperrors "github.com/yungbote/eventops-backend/internal/pkg/errors"
	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
)

// Limiter is satisfied by redisclient.RateLimiter.
type Limiter interface {
	Allow(ctx context.Context, key string) (redisclient.Decision, error)
}

// RateLimit throttles per tenant. It must run after auth. Limiter errors let
// the request through.
func RateLimit(log *logger.Logger, limiter Limiter, m *observability.Metrics) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("middleware", "RateLimit")
	return func(c *gin.Context) {
		key := "anonymous"
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
			key = rd.TenantID.String()
		}
		d, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if d.Limit > 0 {
			c.Header(headerRateLimitLimit, strconv.Itoa(d.Limit))
			c.Header(headerRateLimitRemaining, strconv.Itoa(d.Remaining))
		}
		if !d.Allowed {
			m.IncRateLimited()
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(d.ResetIn.Seconds()))))
			response.RespondError(c, http.StatusTooManyRequests, "rate_limited", apperrors.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}
