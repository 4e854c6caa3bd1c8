package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/eventops-backend/internal/http/response"
	"github.com/yungbote/eventops-backend/internal/modules/segments"
	"github.com/yungbote/eventops-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/eventops-backend/internal/pkg/errors"
	"github.com/yungbote/eventops-backend/internal/services"
)

type SegmentHandler struct {
	segments services.SegmentService
}

func NewSegmentHandler(segments services.SegmentService) *SegmentHandler {
	return &SegmentHandler{segments: segments}
}

type paginationBody struct {
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
	Sort     *segments.SortSpec `json:"sort"`
}

type evaluateSegmentBody struct {
	Filter json.RawMessage `json:"filter" binding:"required"`
	paginationBody
}

type createSegmentBody struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	Filter      json.RawMessage `json:"filter" binding:"required"`
}

// pagination merges the body with the order_by query parameter. A sort in
// the body wins.
func (b paginationBody) pagination(c *gin.Context) segments.Pagination {
	p := segments.Pagination{Page: b.Page, PageSize: b.PageSize, Sort: b.Sort}
	if p.Sort == nil {
		if s, ok := segments.ParseOrderBy(c.Query("order_by")); ok {
			p.Sort = &s
		}
	}
	return p
}

// POST /api/crm/segments/evaluate
func (h *SegmentHandler) Evaluate(c *gin.Context) {
	var body evaluateSegmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.segments.Evaluate(dbctx.Context{Ctx: c.Request.Context()}, services.EvaluateSegmentInput{
		Filter:     body.Filter,
		Pagination: body.pagination(c),
	})
	if err != nil {
		response.RespondAPIError(c, err, "evaluate_segment_failed")
		return
	}
	response.RespondOK(c, res)
}

// POST /api/crm/segments/:id/evaluate
func (h *SegmentHandler) EvaluateSaved(c *gin.Context) {
	segmentID, ok := segmentIDParam(c)
	if !ok {
		return
	}
	var body paginationBody
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	res, err := h.segments.EvaluateSaved(dbctx.Context{Ctx: c.Request.Context()}, segmentID, body.pagination(c))
	if err != nil {
		response.RespondAPIError(c, err, "evaluate_segment_failed")
		return
	}
	response.RespondOK(c, res)
}

// POST /api/crm/segments
func (h *SegmentHandler) Create(c *gin.Context) {
	var body createSegmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	seg, err := h.segments.CreateSegment(dbctx.Context{Ctx: c.Request.Context()}, services.CreateSegmentInput{
		Name:        body.Name,
		Description: body.Description,
		Filter:      body.Filter,
	})
	if err != nil {
		response.RespondAPIError(c, err, "create_segment_failed")
		return
	}
	response.RespondCreated(c, gin.H{"segment": seg})
}

// GET /api/crm/segments
func (h *SegmentHandler) List(c *gin.Context) {
	list, err := h.segments.ListSegments(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondAPIError(c, err, "list_segments_failed")
		return
	}
	response.RespondOK(c, gin.H{"segments": list})
}

// GET /api/crm/segments/:id
func (h *SegmentHandler) Get(c *gin.Context) {
	segmentID, ok := segmentIDParam(c)
	if !ok {
		return
	}
	seg, err := h.segments.GetSegment(dbctx.Context{Ctx: c.Request.Context()}, segmentID)
	if err != nil {
		response.RespondAPIError(c, err, "get_segment_failed")
		return
	}
	response.RespondOK(c, gin.H{"segment": seg})
}

// DELETE /api/crm/segments/:id
func (h *SegmentHandler) Delete(c *gin.Context) {
	segmentID, ok := segmentIDParam(c)
	if !ok {
		return
	}
	if err := h.segments.DeleteSegment(dbctx.Context{Ctx: c.Request.Context()}, segmentID); err != nil {
		response.RespondAPIError(c, err, "delete_segment_failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func segmentIDParam(c *gin.Context) (uuid.UUID, bool) {
	segmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_segment_id", fmt.Errorf("%w: segment id", apperrors.ErrInvalidArgument))
		return uuid.Nil, false
	}
	return segmentID, true
}
