package segments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/eventops-backend/internal/data/repos"
	types "github.com/yungbote/eventops-backend/internal/domain"
	"github.com/yungbote/eventops-backend/internal/pkg/dbctx"
)

// RepoStoreDeps are the repositories backing a RepoStore.
type RepoStoreDeps struct {
	Contacts      repos.ContactRepo
	Occurrences   repos.OccurrenceRepo
	Registrations repos.RegistrationRepo
	Volunteers    repos.VolunteerRepo
}

// RepoStore adapts the CRM repositories to Store. When Tx is set every read
// runs inside it.
type RepoStore struct {
	deps RepoStoreDeps
	tx   *gorm.DB
}

func NewRepoStore(deps RepoStoreDeps) *RepoStore {
	return &RepoStore{deps: deps}
}

// WithTx returns a copy of the store bound to tx.
func (s *RepoStore) WithTx(tx *gorm.DB) *RepoStore {
	return &RepoStore{deps: s.deps, tx: tx}
}

func (s *RepoStore) dbc(ctx context.Context) dbctx.Context {
	return dbctx.Context{Ctx: ctx, Tx: s.tx}
}

func (s *RepoStore) FindOccurrence(ctx context.Context, tenantID, occurrenceID uuid.UUID) (*Occurrence, error) {
	occ, err := s.deps.Occurrences.GetByID(s.dbc(ctx), tenantID, occurrenceID)
	if err != nil || occ == nil {
		return nil, err
	}
	return &Occurrence{ID: occ.ID, StartsAt: occ.StartsAt}, nil
}

func (s *RepoStore) FindPreviousOccurrence(ctx context.Context, tenantID uuid.UUID, before time.Time) (*Occurrence, error) {
	occ, err := s.deps.Occurrences.GetLatestBefore(s.dbc(ctx), tenantID, before)
	if err != nil || occ == nil {
		return nil, err
	}
	return &Occurrence{ID: occ.ID, StartsAt: occ.StartsAt}, nil
}

func (s *RepoStore) ParticipantContactIDs(ctx context.Context, tenantID, occurrenceID uuid.UUID, q ParticipantQualifiers) ([]uuid.UUID, error) {
	return s.deps.Registrations.ParticipantContactIDs(s.dbc(ctx), tenantID, occurrenceID, repos.ParticipantFilter{
		TierID:   q.TierID,
		TierName: q.TierName,
		PeriodID: q.PeriodID,
	})
}

func (s *RepoStore) VolunteerContactIDs(ctx context.Context, tenantID, occurrenceID uuid.UUID, q VolunteerQualifiers) ([]uuid.UUID, error) {
	return s.deps.Volunteers.VolunteerContactIDs(s.dbc(ctx), tenantID, occurrenceID, q.MinShifts)
}

func (s *RepoStore) ContactIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	return s.deps.Contacts.ListIDs(s.dbc(ctx), tenantID)
}

func (s *RepoStore) ContactSummaries(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, order []OrderColumn, limit, offset int) ([]types.ContactSummary, error) {
	cols := make([]repos.OrderColumn, 0, len(order))
	for _, o := range order {
		cols = append(cols, repos.OrderColumn{Column: o.Column, Desc: o.Desc})
	}
	return s.deps.Contacts.ListSummaries(s.dbc(ctx), tenantID, ids, cols, limit, offset)
}

func (s *RepoStore) ContactSortKeys(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]types.ContactSummary, error) {
	return s.deps.Contacts.ListSortKeys(s.dbc(ctx), tenantID, ids)
}

var _ Store = (*RepoStore)(nil)
