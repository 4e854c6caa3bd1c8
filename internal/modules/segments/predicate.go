package segments

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/eventops-backend/internal/pkg/pointers"
)

// predicateKey identifies one involvement query after iteration resolution.
// Exists is not part of the key; negation is applied on top of the cached set.
type predicateKey struct {
	role         Role
	occurrenceID uuid.UUID
	tierID       uuid.UUID
	hasTierName  bool
	tierName     string
	periodID     uuid.UUID
	minShifts    int
}

func newPredicateKey(n Involvement, occurrenceID uuid.UUID) predicateKey {
	k := predicateKey{role: n.Role, occurrenceID: occurrenceID}
	switch n.Role {
	case RoleParticipant:
		k.tierID = pointers.Deref(n.TierID)
		k.hasTierName = n.TierName != nil
		k.tierName = pointers.Deref(n.TierName)
		k.periodID = pointers.Deref(n.PeriodID)
	case RoleVolunteer:
		if minShifts := pointers.Deref(n.MinShifts); minShifts > 0 {
			k.minShifts = minShifts
		}
	}
	return k
}

// predicateCache lives for exactly one evaluation.
type predicateCache map[predicateKey]IDSet

type predicateEvaluator struct {
	resolver Resolver
	store    InvolvementStore
}

// evaluate returns the contacts holding the involvement, ignoring n.Exists.
func (p predicateEvaluator) evaluate(ctx context.Context, n Involvement, tenantID uuid.UUID, currentOccurrenceID *uuid.UUID, cache predicateCache, stats *Stats) (IDSet, error) {
	occurrenceID, err := p.resolver.Resolve(ctx, n.Iteration, tenantID, currentOccurrenceID)
	if err != nil {
		return nil, err
	}
	if occurrenceID == nil {
		stats.UnresolvedIterations++
		return IDSet{}, nil
	}

	key := newPredicateKey(n, *occurrenceID)
	if cached, ok := cache[key]; ok {
		stats.CacheHits++
		return cached, nil
	}

	var ids []uuid.UUID
	switch n.Role {
	case RoleParticipant:
		ids, err = p.store.ParticipantContactIDs(ctx, tenantID, *occurrenceID, ParticipantQualifiers{
			TierID:   n.TierID,
			TierName: n.TierName,
			PeriodID: n.PeriodID,
		})
	case RoleVolunteer:
		ids, err = p.store.VolunteerContactIDs(ctx, tenantID, *occurrenceID, VolunteerQualifiers{
			MinShifts: n.MinShifts,
		})
	default:
		return IDSet{}, nil
	}
	if err != nil {
		return nil, err
	}
	stats.PredicateQueries++

	set := NewIDSet(ids...)
	cache[key] = set
	return set, nil
}
