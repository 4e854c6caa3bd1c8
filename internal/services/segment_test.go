package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/eventops-backend/internal/data/repos"
	"github.com/yungbote/eventops-backend/internal/data/repos/testutil"
	"github.com/yungbote/eventops-backend/internal/modules/segments"
	"github.com/yungbote/eventops-backend/internal/observability"
	"github.com/yungbote/eventops-backend/internal/pkg/apierr"
	"github.com/yungbote/eventops-backend/internal/pkg/ctxutil"
	"github.com/yungbote/eventops-backend/internal/pkg/dbctx"
	"github.com/yungbote/eventops-backend/internal/pkg/pointers"
)

func newTestSegmentService(t *testing.T, db *gorm.DB) SegmentService {
	t.Helper()
	log := testutil.Logger(t)
	store := segments.NewRepoStore(segments.RepoStoreDeps{
		Contacts:      repos.NewContactRepo(db, log),
		Occurrences:   repos.NewOccurrenceRepo(db, log),
		Registrations: repos.NewRegistrationRepo(db, log),
		Volunteers:    repos.NewVolunteerRepo(db, log),
	})
	return NewSegmentService(db, log, store, segments.DefaultConfig(), repos.NewSegmentRepo(db, log), observability.NewMetrics())
}

func tenantContext(tenantID uuid.UUID, current *uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		UserID:              uuid.New(),
		TenantID:            tenantID,
		CurrentOccurrenceID: current,
	})
}

func wantAPIErr(t *testing.T, err error, status int, code string) {
	t.Helper()
	ae, ok := apierr.As(err)
	if !ok {
		t.Fatalf("want apierr %d/%s got=%v", status, code, err)
	}
	if ae.Status != status || ae.Code != code {
		t.Fatalf("apierr: want=%d/%s got=%d/%s", status, code, ae.Status, ae.Code)
	}
}

const returningParticipants = `{
	"type": "transition",
	"from": {"role": "participant", "iteration": "previous", "exists": true},
	"to":   {"role": "participant", "iteration": "current", "exists": true}
}`

func TestSegmentService_TransitionScenario(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	tenant := uuid.New()
	o1 := testutil.SeedOccurrence(t, ctx, tx, tenant, "O1", time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC))
	o2 := testutil.SeedOccurrence(t, ctx, tx, tenant, "O2", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	c1 := testutil.SeedContact(t, ctx, tx, tenant, "Cleo", "One")
	c2 := testutil.SeedContact(t, ctx, tx, tenant, "Cruz", "Two")
	testutil.SeedContact(t, ctx, tx, tenant, "Cai", "Three")
	testutil.SeedRegistration(t, ctx, tx, tenant, o1.ID, pointers.UUID(c1.ID), nil, true)
	testutil.SeedRegistration(t, ctx, tx, tenant, o2.ID, pointers.UUID(c2.ID), nil, true)

	svc := newTestSegmentService(t, db)
	dbc := dbctx.Context{Ctx: tenantContext(tenant, &o2.ID), Tx: tx}

	res, err := svc.Evaluate(dbc, EvaluateSegmentInput{Filter: json.RawMessage(returningParticipants)})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Total != 0 || len(res.MatchedContacts) != 0 {
		t.Fatalf("Evaluate: want=[] total=0 got=%v total=%d", res.MatchedContacts, res.Total)
	}
	out, _ := json.Marshal(res)
	var decoded struct {
		MatchedContacts []json.RawMessage `json:"matchedContacts"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil || decoded.MatchedContacts == nil {
		t.Fatalf("matchedContacts must encode as []: %s", out)
	}

	// not in the previous occurrence, in the current one
	res, err = svc.Evaluate(dbc, EvaluateSegmentInput{Filter: json.RawMessage(`{
		"type": "group", "operator": "AND", "conditions": [
			{"type": "involvement", "role": "participant", "iteration": "previous", "exists": false},
			{"type": "involvement", "role": "participant", "iteration": "current"}
		]
	}`)})
	if err != nil {
		t.Fatalf("Evaluate new participants: %v", err)
	}
	if res.Total != 1 || res.MatchedContacts[0].ID != c2.ID {
		t.Fatalf("Evaluate new participants: want=[%s] got=%v", c2.ID, res.MatchedContacts)
	}
}

func TestSegmentService_Pagination(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	tenant := uuid.New()
	occ := testutil.SeedOccurrence(t, ctx, tx, tenant, "Expo", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 51; i++ {
		c := testutil.SeedContactAt(t, ctx, tx, tenant, "Page", "Contact", base.Add(time.Duration(i)*time.Minute))
		testutil.SeedRegistration(t, ctx, tx, tenant, occ.ID, pointers.UUID(c.ID), nil, true)
	}

	svc := newTestSegmentService(t, db)
	dbc := dbctx.Context{Ctx: tenantContext(tenant, &occ.ID), Tx: tx}
	filter := json.RawMessage(`{"type":"involvement","role":"participant","iteration":"current"}`)

	page1, err := svc.Evaluate(dbc, EvaluateSegmentInput{Filter: filter, Pagination: segments.Pagination{Page: 1, PageSize: 50}})
	if err != nil || len(page1.MatchedContacts) != 50 || page1.Total != 51 {
		t.Fatalf("page 1: err=%v len=%d total=%d", err, len(page1.MatchedContacts), page1.Total)
	}
	page2, err := svc.Evaluate(dbc, EvaluateSegmentInput{Filter: filter, Pagination: segments.Pagination{Page: 2, PageSize: 50}})
	if err != nil || len(page2.MatchedContacts) != 1 || page2.Total != 51 {
		t.Fatalf("page 2: err=%v len=%d total=%d", err, len(page2.MatchedContacts), page2.Total)
	}
	if !page2.MatchedContacts[0].CreatedAt.Equal(base) {
		t.Fatalf("page 2: want oldest contact got=%v", page2.MatchedContacts[0].CreatedAt)
	}
}

func TestSegmentService_Errors(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	svc := newTestSegmentService(t, db)

	_, err := svc.Evaluate(dbctx.Context{Ctx: context.Background(), Tx: tx}, EvaluateSegmentInput{Filter: json.RawMessage(returningParticipants)})
	wantAPIErr(t, err, http.StatusUnauthorized, "unauthorized")

	dbc := dbctx.Context{Ctx: tenantContext(uuid.New(), nil), Tx: tx}
	_, err = svc.Evaluate(dbc, EvaluateSegmentInput{Filter: json.RawMessage(`{"type":"group","operator":"AND","conditions":[]}`)})
	wantAPIErr(t, err, http.StatusBadRequest, "invalid_filter")

	_, err = svc.Evaluate(dbc, EvaluateSegmentInput{Filter: json.RawMessage(returningParticipants), Pagination: segments.Pagination{PageSize: 1000}})
	wantAPIErr(t, err, http.StatusBadRequest, "invalid_pagination")

	_, err = svc.EvaluateSaved(dbc, uuid.New(), segments.Pagination{})
	wantAPIErr(t, err, http.StatusNotFound, "segment_not_found")

	err = svc.DeleteSegment(dbc, uuid.New())
	wantAPIErr(t, err, http.StatusNotFound, "segment_not_found")
}

func TestSegmentService_SavedSegments(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	tenant := uuid.New()
	occ := testutil.SeedOccurrence(t, ctx, tx, tenant, "Fair", time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC))
	c := testutil.SeedContact(t, ctx, tx, tenant, "Vera", "Volunteer")
	testutil.SeedVolunteer(t, ctx, tx, tenant, occ.ID, pointers.UUID(c.ID), 2)

	svc := newTestSegmentService(t, db)
	dbc := dbctx.Context{Ctx: tenantContext(tenant, &occ.ID), Tx: tx}

	_, err := svc.CreateSegment(dbc, CreateSegmentInput{Name: "  ", Filter: json.RawMessage(returningParticipants)})
	wantAPIErr(t, err, http.StatusBadRequest, "invalid_name")

	seg, err := svc.CreateSegment(dbc, CreateSegmentInput{
		Name:   "Two-shift volunteers",
		Filter: json.RawMessage(`{"type":"involvement","role":"volunteer","iteration":"current","minShifts":2}`),
	})
	if err != nil {
		t.Fatalf("CreateSegment: %v", err)
	}

	list, err := svc.ListSegments(dbc)
	if err != nil || len(list) != 1 || list[0].ID != seg.ID {
		t.Fatalf("ListSegments: err=%v got=%v", err, list)
	}

	res, err := svc.EvaluateSaved(dbc, seg.ID, segments.Pagination{})
	if err != nil {
		t.Fatalf("EvaluateSaved: %v", err)
	}
	if res.Total != 1 || res.MatchedContacts[0].ID != c.ID {
		t.Fatalf("EvaluateSaved: want=[%s] got=%v", c.ID, res.MatchedContacts)
	}

	otherTenant := dbctx.Context{Ctx: tenantContext(uuid.New(), nil), Tx: tx}
	_, err = svc.GetSegment(otherTenant, seg.ID)
	wantAPIErr(t, err, http.StatusNotFound, "segment_not_found")

	if err := svc.DeleteSegment(dbc, seg.ID); err != nil {
		t.Fatalf("DeleteSegment: %v", err)
	}
	_, err = svc.GetSegment(dbc, seg.ID)
	wantAPIErr(t, err, http.StatusNotFound, "segment_not_found")
}
