package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/eventops-backend/internal/http/response"
	"github.com/yungbote/eventops-backend/internal/pkg/ctxutil"
	apperrors "github.com/yungbote/eventops-backend/internal/pkg/errors"
)

const headerCurrentOccurrence = "X-Current-Occurrence"

// AttachRequestContext seeds request data with the occurrence the client has
// selected. Auth fills in the caller later and keeps this value.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(headerCurrentOccurrence))
		if raw == "" {
			c.Next()
			return
		}
		occurrenceID, err := uuid.Parse(raw)
		if err != nil || occurrenceID == uuid.Nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_current_occurrence",
				fmt.Errorf("%w: %s must be a uuid", apperrors.ErrInvalidArgument, headerCurrentOccurrence))
			c.Abort()
			return
		}
		rd := &ctxutil.RequestData{}
		if existing := ctxutil.GetRequestData(c.Request.Context()); existing != nil {
			copied := *existing
			rd = &copied
		}
		rd.CurrentOccurrenceID = &occurrenceID
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}
