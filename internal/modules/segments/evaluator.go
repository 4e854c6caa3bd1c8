package segments

import (
	"context"

	"github.com/google/uuid"
)

// Stats describes the work done by one evaluation.
type Stats struct {
	Nodes                int
	PredicateQueries     int
	CacheHits            int
	UnresolvedIterations int
	UniverseLoaded       bool
	UniverseSize         int
}

// Evaluator walks filter trees into contact id sets. It keeps no state
// between calls; each Evaluate builds its own cache and universe.
type Evaluator struct {
	contacts   ContactStore
	predicates predicateEvaluator
}

func NewEvaluator(occurrences OccurrenceStore, involvements InvolvementStore, contacts ContactStore) *Evaluator {
	return &Evaluator{
		contacts: contacts,
		predicates: predicateEvaluator{
			resolver: NewResolver(occurrences),
			store:    involvements,
		},
	}
}

// Evaluate resolves root for the tenant. The tree must already be validated.
// Store errors abort the walk and are returned as-is.
func (e *Evaluator) Evaluate(ctx context.Context, tenantID uuid.UUID, currentOccurrenceID *uuid.UUID, root Node) (IDSet, Stats, error) {
	run := &evaluation{
		ctx:       ctx,
		evaluator: e,
		tenantID:  tenantID,
		current:   currentOccurrenceID,
		cache:     predicateCache{},
	}
	if root == nil {
		return IDSet{}, run.stats, nil
	}
	out, err := root.accept(run)
	if err != nil {
		return nil, run.stats, err
	}
	return out, run.stats, nil
}

type evaluation struct {
	ctx       context.Context
	evaluator *Evaluator
	tenantID  uuid.UUID
	current   *uuid.UUID
	cache     predicateCache
	universe  IDSet
	stats     Stats
}

// universeSet loads the tenant's contacts on first use only.
func (r *evaluation) universeSet() (IDSet, error) {
	if r.universe != nil {
		return r.universe, nil
	}
	ids, err := r.evaluator.contacts.ContactIDs(r.ctx, r.tenantID)
	if err != nil {
		return nil, err
	}
	r.universe = NewIDSet(ids...)
	r.stats.UniverseLoaded = true
	r.stats.UniverseSize = len(r.universe)
	return r.universe, nil
}

func (r *evaluation) complement(s IDSet) (IDSet, error) {
	universe, err := r.universeSet()
	if err != nil {
		return nil, err
	}
	return Difference(universe, s), nil
}

func (r *evaluation) involvement(n Involvement) (IDSet, error) {
	return r.evaluator.predicates.evaluate(r.ctx, n, r.tenantID, r.current, r.cache, &r.stats)
}

func (r *evaluation) visitInvolvement(n Involvement) (IDSet, error) {
	r.stats.Nodes++
	set, err := r.involvement(n)
	if err != nil {
		return nil, err
	}
	if !n.Exists {
		return r.complement(set)
	}
	return set, nil
}

func (r *evaluation) visitTransition(n Transition) (IDSet, error) {
	r.stats.Nodes++
	from, to := n.From, n.To
	from.Exists, to.Exists = true, true

	fromSet, err := r.involvement(from)
	if err != nil {
		return nil, err
	}
	toSet, err := r.involvement(to)
	if err != nil {
		return nil, err
	}
	return Intersect(fromSet, toSet), nil
}

// visitGroup folds children left to right in order. AND and OR are
// associative and commutative, so order only affects cache population.
func (r *evaluation) visitGroup(n Group) (IDSet, error) {
	r.stats.Nodes++
	if len(n.Conditions) == 0 {
		return IDSet{}, nil
	}
	var combined IDSet
	for i, child := range n.Conditions {
		set, err := child.accept(r)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			combined = set
			continue
		}
		switch n.Operator {
		case OperatorOr:
			combined = Union(combined, set)
		default:
			combined = Intersect(combined, set)
		}
	}
	if n.Not {
		return r.complement(combined)
	}
	return combined, nil
}
