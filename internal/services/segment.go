package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/eventops-backend/internal/data/db"
	"github.com/yungbote/eventops-backend/internal/data/repos"
	types "github.com/yungbote/eventops-backend/internal/domain"
	"github.com/yungbote/eventops-backend/internal/modules/segments"
	"github.com/yungbote/eventops-backend/internal/observability"
	"github.com/yungbote/eventops-backend/internal/pkg/apierr"
	"github.com/yungbote/eventops-backend/internal/pkg/ctxutil"
	"github.com/yungbote/eventops-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/eventops-backend/internal/pkg/errors"
	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

const maxSegmentNameLen = 200

// EvaluateSegmentInput is an ad-hoc evaluation request. The tenant and the
// current occurrence come from request data.
type EvaluateSegmentInput struct {
	Filter     json.RawMessage
	Pagination segments.Pagination
}

type CreateSegmentInput struct {
	Name        string
	Description string
	Filter      json.RawMessage
}

type SegmentService interface {
	Evaluate(dbc dbctx.Context, in EvaluateSegmentInput) (*segments.Result, error)
	EvaluateSaved(dbc dbctx.Context, segmentID uuid.UUID, p segments.Pagination) (*segments.Result, error)
	CreateSegment(dbc dbctx.Context, in CreateSegmentInput) (*types.Segment, error)
	ListSegments(dbc dbctx.Context) ([]*types.Segment, error)
	GetSegment(dbc dbctx.Context, segmentID uuid.UUID) (*types.Segment, error)
	DeleteSegment(dbc dbctx.Context, segmentID uuid.UUID) error
}

type segmentService struct {
	db          *gorm.DB
	log         *logger.Logger
	store       *segments.RepoStore
	engine      *segments.Engine
	segmentRepo repos.SegmentRepo
	metrics     *observability.Metrics
	tracer      trace.Tracer
}

func NewSegmentService(db *gorm.DB, log *logger.Logger, store *segments.RepoStore, cfg segments.Config, segmentRepo repos.SegmentRepo, metrics *observability.Metrics) SegmentService {
	serviceLog := log.With("service", "SegmentService")
	return &segmentService{
		db:          db,
		log:         serviceLog,
		store:       store,
		engine:      segments.New(store, cfg, serviceLog),
		segmentRepo: segmentRepo,
		metrics:     metrics,
		tracer:      otel.Tracer("eventops/segments"),
	}
}

func (s *segmentService) Evaluate(dbc dbctx.Context, in EvaluateSegmentInput) (*segments.Result, error) {
	rd, err := requireTenant(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	if err := s.checkPagination(in.Pagination); err != nil {
		return nil, err
	}
	root, err := s.engine.ParseFilter(in.Filter)
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_filter", err)
	}
	return s.evaluate(dbc, rd, root, in.Pagination, uuid.Nil)
}

func (s *segmentService) EvaluateSaved(dbc dbctx.Context, segmentID uuid.UUID, p segments.Pagination) (*segments.Result, error) {
	rd, err := requireTenant(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	if err := s.checkPagination(p); err != nil {
		return nil, err
	}
	seg, err := s.loadSegment(dbc, rd.TenantID, segmentID)
	if err != nil {
		return nil, err
	}
	root, err := s.engine.ParseFilter(seg.Filter)
	if err != nil {
		// saved before the current limits or rules applied
		s.log.Warn("stored segment filter no longer valid", "segment_id", seg.ID, "error", err)
		return nil, apierr.New(http.StatusUnprocessableEntity, "stored_filter_invalid", err)
	}
	return s.evaluate(dbc, rd, root, p, seg.ID)
}

func (s *segmentService) evaluate(dbc dbctx.Context, rd *ctxutil.RequestData, root segments.Node, p segments.Pagination, segmentID uuid.UUID) (*segments.Result, error) {
	ctx, span := s.tracer.Start(dbc.Ctx, "segments.evaluate")
	defer span.End()
	span.SetAttributes(attribute.String("tenant.id", rd.TenantID.String()))
	if segmentID != uuid.Nil {
		span.SetAttributes(attribute.String("segment.id", segmentID.String()))
	}

	engine := s.engine
	if dbc.Tx != nil {
		engine = segments.New(s.store.WithTx(dbc.Tx), s.engine.Config(), s.log)
	}
	start := time.Now()
	res, err := engine.EvaluateSegment(ctx, rd.TenantID, rd.CurrentOccurrenceID, root, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluate failed")
		mapped := s.mapEvaluateError(err)
		outcome := "error"
		if ae, ok := apierr.As(mapped); ok {
			outcome = ae.Code
		}
		s.metrics.ObserveSegment(observability.SegmentObservation{Outcome: outcome, Duration: time.Since(start)})
		return nil, mapped
	}
	s.metrics.ObserveSegment(observability.SegmentObservation{
		Outcome:          "ok",
		Duration:         time.Since(start),
		Matched:          res.Total,
		PredicateQueries: res.Stats.PredicateQueries,
		CacheHits:        res.Stats.CacheHits,
		UniverseLoaded:   res.Stats.UniverseLoaded,
	})
	span.SetAttributes(
		attribute.Int("segment.total", res.Total),
		attribute.Int("segment.predicate_queries", res.Stats.PredicateQueries),
		attribute.Int("segment.cache_hits", res.Stats.CacheHits),
		attribute.Bool("segment.universe_loaded", res.Stats.UniverseLoaded),
	)
	return &res, nil
}

func (s *segmentService) checkPagination(p segments.Pagination) error {
	cfg := s.engine.Config()
	if err := segments.ValidatePagination(p.WithDefaults(cfg), cfg); err != nil {
		return apierr.New(http.StatusBadRequest, "invalid_pagination", err)
	}
	return nil
}

func (s *segmentService) mapEvaluateError(err error) error {
	switch {
	case segments.IsValidationError(err):
		return apierr.New(http.StatusBadRequest, "invalid_filter", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apierr.New(http.StatusServiceUnavailable, "evaluation_timeout", err)
	case db.IsUnavailable(err):
		s.log.Error("segment store unavailable", "error", err)
		return apierr.New(http.StatusServiceUnavailable, "store_unavailable", err)
	default:
		s.log.Error("segment evaluation failed", "error", err)
		return apierr.New(http.StatusInternalServerError, "evaluate_segment_failed", err)
	}
}

func (s *segmentService) CreateSegment(dbc dbctx.Context, in CreateSegmentInput) (*types.Segment, error) {
	rd, err := requireTenant(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > maxSegmentNameLen {
		return nil, apierr.New(http.StatusBadRequest, "invalid_name", fmt.Errorf("name must be 1-%d characters", maxSegmentNameLen))
	}
	root, err := s.engine.ParseFilter(in.Filter)
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_filter", err)
	}
	canonical, err := json.Marshal(segments.Filter{Root: root})
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "encode_filter_failed", err)
	}

	seg := &types.Segment{
		ID:          uuid.New(),
		TenantID:    rd.TenantID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Filter:      datatypes.JSON(canonical),
		CreatedBy:   rd.UserID,
	}
	if _, err := s.segmentRepo.Create(dbc, []*types.Segment{seg}); err != nil {
		s.log.Error("create segment failed", "error", err)
		return nil, apierr.New(http.StatusInternalServerError, "create_segment_failed", err)
	}
	s.log.Info("segment created", "segment_id", seg.ID, "tenant_id", seg.TenantID)
	return seg, nil
}

func (s *segmentService) ListSegments(dbc dbctx.Context) ([]*types.Segment, error) {
	rd, err := requireTenant(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.segmentRepo.ListByTenant(dbc, rd.TenantID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "list_segments_failed", err)
	}
	return out, nil
}

func (s *segmentService) GetSegment(dbc dbctx.Context, segmentID uuid.UUID) (*types.Segment, error) {
	rd, err := requireTenant(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	return s.loadSegment(dbc, rd.TenantID, segmentID)
}

func (s *segmentService) DeleteSegment(dbc dbctx.Context, segmentID uuid.UUID) error {
	rd, err := requireTenant(dbc.Ctx)
	if err != nil {
		return err
	}
	ok, err := s.segmentRepo.SoftDelete(dbc, rd.TenantID, segmentID)
	if err != nil {
		return apierr.New(http.StatusInternalServerError, "delete_segment_failed", err)
	}
	if !ok {
		return apierr.New(http.StatusNotFound, "segment_not_found", apperrors.ErrNotFound)
	}
	s.log.Info("segment deleted", "segment_id", segmentID, "tenant_id", rd.TenantID)
	return nil
}

func (s *segmentService) loadSegment(dbc dbctx.Context, tenantID, segmentID uuid.UUID) (*types.Segment, error) {
	seg, err := s.segmentRepo.GetByID(dbc, tenantID, segmentID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_segment_failed", err)
	}
	if seg == nil {
		return nil, apierr.New(http.StatusNotFound, "segment_not_found", apperrors.ErrNotFound)
	}
	return seg, nil
}

func requireTenant(ctx context.Context) (*ctxutil.RequestData, error) {
	if ctx == nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", apperrors.ErrUnauthorized)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TenantID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", apperrors.ErrUnauthorized)
	}
	return rd, nil
}
