package segments

import (
	"context"

	"github.com/google/uuid"
)

// Resolver maps iteration references to concrete occurrence ids.
type Resolver struct {
	occurrences OccurrenceStore
}

func NewResolver(occurrences OccurrenceStore) Resolver {
	return Resolver{occurrences: occurrences}
}

// Resolve returns nil when the reference does not point at an occurrence.
// That is an expected outcome, not an error; errors only come from the store.
func (r Resolver) Resolve(ctx context.Context, ref IterationRef, tenantID uuid.UUID, currentOccurrenceID *uuid.UUID) (*uuid.UUID, error) {
	switch ref.Kind {
	case IterationSpecific:
		// Not checked against the tenant here; tenant-scoped involvement
		// queries return nothing for a foreign id.
		return ref.OccurrenceID, nil
	case IterationCurrent:
		return currentOccurrenceID, nil
	case IterationPrevious:
		if currentOccurrenceID == nil {
			return nil, nil
		}
		current, err := r.occurrences.FindOccurrence(ctx, tenantID, *currentOccurrenceID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, nil
		}
		prev, err := r.occurrences.FindPreviousOccurrence(ctx, tenantID, current.StartsAt)
		if err != nil {
			return nil, err
		}
		if prev == nil {
			return nil, nil
		}
		id := prev.ID
		return &id, nil
	default:
		return nil, nil
	}
}
