package segments

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/eventops-backend/internal/domain"
)

type fakeParticipant struct {
	contactID uuid.UUID
	tierID    *uuid.UUID
	tierName  string
	periodID  *uuid.UUID
	finalized bool
}

type fakeVolunteer struct {
	contactID uuid.UUID
	shifts    int
}

// fakeStore is an in-memory Store for a single tenant.
type fakeStore struct {
	tenantID     uuid.UUID
	occurrences  []Occurrence
	participants map[uuid.UUID][]fakeParticipant
	volunteers   map[uuid.UUID][]fakeVolunteer
	contacts     map[uuid.UUID]types.ContactSummary

	err error

	participantCalls int
	volunteerCalls   int
	contactIDCalls   int
	summaryCalls     int
	sortKeyCalls     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tenantID:     uuid.New(),
		participants: map[uuid.UUID][]fakeParticipant{},
		volunteers:   map[uuid.UUID][]fakeVolunteer{},
		contacts:     map[uuid.UUID]types.ContactSummary{},
	}
}

func (s *fakeStore) addOccurrence(startsAt time.Time) uuid.UUID {
	id := uuid.New()
	s.occurrences = append(s.occurrences, Occurrence{ID: id, StartsAt: startsAt})
	return id
}

func (s *fakeStore) addContact(first, last string, createdAt time.Time) uuid.UUID {
	id := uuid.New()
	s.contacts[id] = types.ContactSummary{
		ID:        id,
		FirstName: first,
		LastName:  last,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	return id
}

func (s *fakeStore) register(occurrenceID, contactID uuid.UUID) {
	s.participants[occurrenceID] = append(s.participants[occurrenceID], fakeParticipant{contactID: contactID, finalized: true})
}

func (s *fakeStore) volunteer(occurrenceID, contactID uuid.UUID, shifts int) {
	s.volunteers[occurrenceID] = append(s.volunteers[occurrenceID], fakeVolunteer{contactID: contactID, shifts: shifts})
}

func (s *fakeStore) FindOccurrence(_ context.Context, tenantID, occurrenceID uuid.UUID) (*Occurrence, error) {
	if s.err != nil {
		return nil, s.err
	}
	if tenantID != s.tenantID {
		return nil, nil
	}
	for _, o := range s.occurrences {
		if o.ID == occurrenceID {
			occ := o
			return &occ, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindPreviousOccurrence(_ context.Context, tenantID uuid.UUID, before time.Time) (*Occurrence, error) {
	if s.err != nil {
		return nil, s.err
	}
	if tenantID != s.tenantID {
		return nil, nil
	}
	var best *Occurrence
	for _, o := range s.occurrences {
		if !o.StartsAt.Before(before) {
			continue
		}
		if best == nil || o.StartsAt.After(best.StartsAt) {
			occ := o
			best = &occ
		}
	}
	return best, nil
}

func (s *fakeStore) ParticipantContactIDs(_ context.Context, tenantID, occurrenceID uuid.UUID, q ParticipantQualifiers) ([]uuid.UUID, error) {
	s.participantCalls++
	if s.err != nil {
		return nil, s.err
	}
	if tenantID != s.tenantID {
		return nil, nil
	}
	var out []uuid.UUID
	for _, p := range s.participants[occurrenceID] {
		if !p.finalized {
			continue
		}
		if q.TierID != nil && (p.tierID == nil || *p.tierID != *q.TierID) {
			continue
		}
		if q.TierName != nil && p.tierName != *q.TierName {
			continue
		}
		if q.PeriodID != nil && (p.periodID == nil || *p.periodID != *q.PeriodID) {
			continue
		}
		out = append(out, p.contactID)
	}
	return out, nil
}

func (s *fakeStore) VolunteerContactIDs(_ context.Context, tenantID, occurrenceID uuid.UUID, q VolunteerQualifiers) ([]uuid.UUID, error) {
	s.volunteerCalls++
	if s.err != nil {
		return nil, s.err
	}
	if tenantID != s.tenantID {
		return nil, nil
	}
	var out []uuid.UUID
	for _, v := range s.volunteers[occurrenceID] {
		if q.MinShifts != nil && v.shifts < *q.MinShifts {
			continue
		}
		out = append(out, v.contactID)
	}
	return out, nil
}

func (s *fakeStore) ContactIDs(_ context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	s.contactIDCalls++
	if s.err != nil {
		return nil, s.err
	}
	if tenantID != s.tenantID {
		return nil, nil
	}
	out := make([]uuid.UUID, 0, len(s.contacts))
	for id := range s.contacts {
		out = append(out, id)
	}
	return out, nil
}

func (s *fakeStore) ContactSummaries(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID, order []OrderColumn, limit, offset int) ([]types.ContactSummary, error) {
	s.summaryCalls++
	if s.err != nil {
		return nil, s.err
	}
	rows := s.lookup(tenantID, ids)
	sort.SliceStable(rows, func(i, j int) bool { return lessByColumns(rows[i], rows[j], order) })
	if offset >= len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *fakeStore) ContactSortKeys(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]types.ContactSummary, error) {
	s.sortKeyCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.lookup(tenantID, ids), nil
}

func (s *fakeStore) lookup(tenantID uuid.UUID, ids []uuid.UUID) []types.ContactSummary {
	if tenantID != s.tenantID {
		return nil
	}
	out := make([]types.ContactSummary, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.contacts[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

func lessByColumns(a, b types.ContactSummary, order []OrderColumn) bool {
	for _, o := range order {
		c := 0
		switch o.Column {
		case "last_name":
			c = strings.Compare(a.LastName, b.LastName)
		case "first_name":
			c = strings.Compare(a.FirstName, b.FirstName)
		case "created_at":
			c = compareTime(a.CreatedAt, b.CreatedAt)
		case "updated_at":
			c = compareTime(a.UpdatedAt, b.UpdatedAt)
		case "id":
			c = bytes.Compare(a.ID[:], b.ID[:])
		}
		if o.Desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
	}
	return false
}

var _ Store = (*fakeStore)(nil)
