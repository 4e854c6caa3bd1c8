package segments

import (
	"context"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/eventops-backend/internal/domain"
)

// Occurrence is the slice of an event occurrence the resolver needs.
type Occurrence struct {
	ID       uuid.UUID
	StartsAt time.Time
}

type ParticipantQualifiers struct {
	TierID   *uuid.UUID
	TierName *string
	PeriodID *uuid.UUID
}

type VolunteerQualifiers struct {
	// MinShifts <= 0 or nil means no shift requirement.
	MinShifts *int
}

type OccurrenceStore interface {
	// FindOccurrence returns nil, nil when the occurrence does not exist for the tenant.
	FindOccurrence(ctx context.Context, tenantID, occurrenceID uuid.UUID) (*Occurrence, error)
	// FindPreviousOccurrence returns the non-deleted occurrence with the latest
	// start strictly before the given time, or nil, nil.
	FindPreviousOccurrence(ctx context.Context, tenantID uuid.UUID, before time.Time) (*Occurrence, error)
}

type InvolvementStore interface {
	ParticipantContactIDs(ctx context.Context, tenantID, occurrenceID uuid.UUID, q ParticipantQualifiers) ([]uuid.UUID, error)
	VolunteerContactIDs(ctx context.Context, tenantID, occurrenceID uuid.UUID, q VolunteerQualifiers) ([]uuid.UUID, error)
}

type ContactStore interface {
	// ContactIDs returns every non-deleted contact of the tenant.
	ContactIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error)
	// ContactSummaries returns one page of the given contacts ordered by the store.
	ContactSummaries(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, order []OrderColumn, limit, offset int) ([]types.ContactSummary, error)
	// ContactSortKeys returns the sortable columns of the given contacts, unordered.
	ContactSortKeys(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]types.ContactSummary, error)
}

// Store is everything the evaluator and materializer read.
type Store interface {
	OccurrenceStore
	InvolvementStore
	ContactStore
}

// OrderColumn is one ORDER BY term against the contacts table.
type OrderColumn struct {
	Column string
	Desc   bool
}
