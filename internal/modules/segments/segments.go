package segments

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	types "github.com/yungbote/eventops-backend/internal/domain"
	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

// Result is one evaluated page of a segment.
type Result struct {
	MatchedContacts []types.ContactSummary `json:"matchedContacts"`
	Total           int                    `json:"total"`
	Sort            SortSpec               `json:"sort"`
	Stats           Stats                  `json:"-"`
}

// Engine is the segment evaluation entry point: validation, tree
// evaluation and materialization over one Store.
type Engine struct {
	cfg          Config
	log          *logger.Logger
	evaluator    *Evaluator
	materializer Materializer
}

func New(store Store, cfg Config, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		cfg:          cfg,
		log:          log.With("module", "segments"),
		evaluator:    NewEvaluator(store, store, store),
		materializer: NewMaterializer(store, cfg),
	}
}

func (e *Engine) Config() Config { return e.cfg }

// ParseFilter decodes and validates a tree against the engine's limits.
func (e *Engine) ParseFilter(data []byte) (Node, error) {
	return ParseFilter(data, e.cfg.Limits)
}

// EvaluateSegment validates the tree and pagination, evaluates the tree for
// the tenant and returns the requested page. Invalid input is rejected
// before any store access.
func (e *Engine) EvaluateSegment(ctx context.Context, tenantID uuid.UUID, currentOccurrenceID *uuid.UUID, root Node, p Pagination) (Result, error) {
	p = p.WithDefaults(e.cfg)
	if err := ValidatePagination(p, e.cfg); err != nil {
		return Result{}, err
	}
	if err := Validate(root, e.cfg.Limits); err != nil {
		return Result{}, err
	}

	ids, stats, err := e.evaluator.Evaluate(ctx, tenantID, currentOccurrenceID, root)
	if err != nil {
		return Result{}, err
	}
	e.log.Debug("segment evaluated",
		"tenant_id", tenantID,
		"nodes", stats.Nodes,
		"predicate_queries", stats.PredicateQueries,
		"cache_hits", stats.CacheHits,
		"universe_loaded", stats.UniverseLoaded,
		"matched", ids.Len(),
	)

	sortSpec := e.materializer.ResolveSort(p.Sort)
	records, total, err := e.materializer.Materialize(ctx, ids, tenantID, p.Page, p.PageSize, &sortSpec)
	if err != nil {
		return Result{}, err
	}
	return Result{
		MatchedContacts: records,
		Total:           total,
		Sort:            sortSpec,
		Stats:           stats,
	}, nil
}

func itoa(i int) string { return strconv.Itoa(i) }
