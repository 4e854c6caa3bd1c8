package segments

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/eventops-backend/internal/domain"
	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

func newEngine(store Store, cfg Config) *Engine {
	return New(store, cfg, logger.Nop())
}

func TestEvaluateSegment_TransitionAcrossIterations(t *testing.T) {
	s := newFakeStore()
	base := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	o1 := s.addOccurrence(base)
	o2 := s.addOccurrence(base.AddDate(1, 0, 0))
	c1 := s.addContact("Una", "First", base)
	c2 := s.addContact("Dos", "Second", base)
	s.addContact("Tres", "Third", base)
	s.register(o1, c1)
	s.register(o2, c2)

	tree, err := ParseFilter([]byte(`{
		"type": "transition",
		"from": {"role": "participant", "iteration": "previous", "exists": true},
		"to":   {"role": "participant", "iteration": "current", "exists": true}
	}`), DefaultConfig().Limits)
	require.NoError(t, err)

	res, err := newEngine(s, DefaultConfig()).EvaluateSegment(context.Background(), s.tenantID, &o2, tree, Pagination{})
	require.NoError(t, err)
	require.NotNil(t, res.MatchedContacts)
	require.Empty(t, res.MatchedContacts)
	require.Equal(t, 0, res.Total)
}

func TestEvaluateSegment_PaginationBoundary(t *testing.T) {
	for name, cfg := range map[string]Config{
		"in list":   DefaultConfig(),
		"sort keys": smallListConfig(),
	} {
		t.Run(name, func(t *testing.T) {
			s := newFakeStore()
			base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			occ := s.addOccurrence(base)
			for i := 0; i < 51; i++ {
				id := s.addContact("C", "Contact", base.Add(time.Duration(i)*time.Minute))
				s.register(occ, id)
			}
			e := newEngine(s, cfg)
			tree := participant(Specific(occ))

			page1, err := e.EvaluateSegment(context.Background(), s.tenantID, nil, tree, Pagination{Page: 1, PageSize: 50})
			require.NoError(t, err)
			require.Len(t, page1.MatchedContacts, 50)
			require.Equal(t, 51, page1.Total)

			page2, err := e.EvaluateSegment(context.Background(), s.tenantID, nil, tree, Pagination{Page: 2, PageSize: 50})
			require.NoError(t, err)
			require.Len(t, page2.MatchedContacts, 1)
			require.Equal(t, 51, page2.Total)

			seen := map[uuid.UUID]bool{}
			for _, c := range append(page1.MatchedContacts, page2.MatchedContacts...) {
				require.False(t, seen[c.ID], "contact %s returned twice", c.ID)
				seen[c.ID] = true
			}
			require.Len(t, seen, 51)

			// createdAt desc by default: the newest contact leads page 1
			require.Equal(t, base.Add(50*time.Minute), page1.MatchedContacts[0].CreatedAt)
			require.Equal(t, base, page2.MatchedContacts[0].CreatedAt)

			page3, err := e.EvaluateSegment(context.Background(), s.tenantID, nil, tree, Pagination{Page: 3, PageSize: 50})
			require.NoError(t, err)
			require.Empty(t, page3.MatchedContacts)
			require.Equal(t, 51, page3.Total)
		})
	}
}

func TestEvaluateSegment_PageTooLarge(t *testing.T) {
	for name, cfg := range map[string]Config{
		"in list":   DefaultConfig(),
		"sort keys": smallListConfig(),
	} {
		t.Run(name, func(t *testing.T) {
			s := newFakeStore()
			base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			occ := s.addOccurrence(base)
			for i := 0; i < 51; i++ {
				s.register(occ, s.addContact("C", "Contact", base.Add(time.Duration(i)*time.Minute)))
			}
			e := newEngine(s, cfg)
			tree := participant(Specific(occ))

			_, err := e.EvaluateSegment(context.Background(), s.tenantID, nil, tree, Pagination{Page: math.MaxInt/50 + 2, PageSize: 50})
			require.True(t, IsValidationError(err), "got %v", err)
			require.Zero(t, s.participantCalls+s.summaryCalls)

			// the largest accepted page is past the end, not page 1
			res, err := e.EvaluateSegment(context.Background(), s.tenantID, nil, tree, Pagination{Page: math.MaxInt/50 + 1, PageSize: 50})
			require.NoError(t, err)
			require.Empty(t, res.MatchedContacts)
			require.Equal(t, 51, res.Total)
			require.Zero(t, s.summaryCalls)

			ids, _, err := e.evaluator.Evaluate(context.Background(), s.tenantID, nil, tree)
			require.NoError(t, err)
			rows, total, err := NewMaterializer(s, cfg).Materialize(context.Background(), ids, s.tenantID, math.MaxInt, 50, nil)
			require.NoError(t, err)
			require.Empty(t, rows)
			require.Equal(t, 51, total)
		})
	}
}

func smallListConfig() Config {
	cfg := DefaultConfig()
	cfg.Materialize.MaxInList = 10
	cfg.Materialize.SortKeyBatch = 7
	return cfg
}

func TestEvaluateSegment_SortByName(t *testing.T) {
	for name, cfg := range map[string]Config{
		"in list":   DefaultConfig(),
		"sort keys": smallListConfig(),
	} {
		t.Run(name, func(t *testing.T) {
			s := newFakeStore()
			base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			occ := s.addOccurrence(base)
			for _, n := range [][2]string{{"Bea", "Young"}, {"Abe", "Young"}, {"Zed", "Adams"}} {
				s.register(occ, s.addContact(n[0], n[1], base))
			}
			for i := 0; i < 12; i++ {
				s.register(occ, s.addContact("Mid", "Miller", base))
			}

			res, err := newEngine(s, cfg).EvaluateSegment(context.Background(), s.tenantID, nil, participant(Specific(occ)), Pagination{
				PageSize: 20,
				Sort:     &SortSpec{Field: SortName},
			})
			require.NoError(t, err)
			require.Len(t, res.MatchedContacts, 15)
			require.Equal(t, SortSpec{Field: SortName}, res.Sort)
			require.Equal(t, "Adams", res.MatchedContacts[0].LastName)
			require.Equal(t, "Abe", res.MatchedContacts[13].FirstName)
			require.Equal(t, "Bea", res.MatchedContacts[14].FirstName)
		})
	}
}

func TestEvaluateSegment_UnknownSortFallsBack(t *testing.T) {
	s := newFakeStore()
	occ := s.addOccurrence(time.Now())
	s.register(occ, s.addContact("A", "B", time.Now()))

	res, err := newEngine(s, DefaultConfig()).EvaluateSegment(context.Background(), s.tenantID, nil, participant(Specific(occ)), Pagination{
		Sort: &SortSpec{Field: "email"},
	})
	require.NoError(t, err)
	require.Equal(t, SortSpec{Field: SortCreatedAt, Desc: true}, res.Sort)
}

func TestEvaluateSegment_RejectsInvalidInputBeforeStoreAccess(t *testing.T) {
	s := newFakeStore()
	e := newEngine(s, DefaultConfig())
	ctx := context.Background()

	_, err := e.EvaluateSegment(ctx, s.tenantID, nil, participant(Current()), Pagination{PageSize: 500})
	require.True(t, IsValidationError(err))

	_, err = e.EvaluateSegment(ctx, s.tenantID, nil, participant(Current()), Pagination{Page: -1})
	require.True(t, IsValidationError(err))

	_, err = e.EvaluateSegment(ctx, s.tenantID, nil, Group{Operator: OperatorAnd}, Pagination{})
	require.True(t, IsValidationError(err))

	_, err = e.EvaluateSegment(ctx, s.tenantID, nil, nil, Pagination{})
	require.True(t, IsValidationError(err))

	require.Zero(t, s.participantCalls+s.volunteerCalls+s.contactIDCalls+s.summaryCalls)
}

func TestEvaluateSegment_StoreErrorDuringMaterialize(t *testing.T) {
	s := newFakeStore()
	occ := s.addOccurrence(time.Now())
	s.register(occ, s.addContact("A", "B", time.Now()))
	e := newEngine(s, DefaultConfig())

	ids, _, err := e.evaluator.Evaluate(context.Background(), s.tenantID, nil, participant(Specific(occ)))
	require.NoError(t, err)
	require.Equal(t, 1, ids.Len())

	s.err = context.DeadlineExceeded
	_, _, err = NewMaterializer(s, DefaultConfig()).Materialize(context.Background(), ids, s.tenantID, 1, 50, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEvaluateSegment_EmptySetSkipsContactQuery(t *testing.T) {
	s := newFakeStore()
	occ := s.addOccurrence(time.Now())

	res, err := newEngine(s, DefaultConfig()).EvaluateSegment(context.Background(), s.tenantID, nil, participant(Specific(occ)), Pagination{})
	require.NoError(t, err)
	require.Equal(t, 0, res.Total)
	require.Zero(t, s.summaryCalls)
}

func TestParseOrderBy(t *testing.T) {
	cases := []struct {
		in   string
		want SortSpec
		ok   bool
	}{
		{in: "name", want: SortSpec{Field: SortName}, ok: true},
		{in: "created_at desc", want: SortSpec{Field: SortCreatedAt, Desc: true}, ok: true},
		{in: "updated_at asc, name", want: SortSpec{Field: SortUpdatedAt}, ok: true},
		{in: "", ok: false},
		{in: "name sideways", ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseOrderBy(tc.in)
		require.Equal(t, tc.ok, ok, "ParseOrderBy(%q)", tc.in)
		if tc.ok {
			require.Equal(t, tc.want, got, "ParseOrderBy(%q)", tc.in)
		}
	}
}

func TestSortSpec_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		in   string
		want SortSpec
	}{
		{in: `{"field":"name"}`, want: SortSpec{Field: SortName}},
		{in: `{"field":"name","direction":"asc"}`, want: SortSpec{Field: SortName}},
		{in: `{"field":"created_at","direction":"DESC"}`, want: SortSpec{Field: SortCreatedAt, Desc: true}},
		{in: `{"field":"updatedAt","direction":" desc "}`, want: SortSpec{Field: SortUpdatedAt, Desc: true}},
	}
	for _, tc := range cases {
		var got SortSpec
		require.NoError(t, json.Unmarshal([]byte(tc.in), &got), tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

func TestLessSummary_NameIsByteOrder(t *testing.T) {
	upper := types.ContactSummary{ID: uuid.New(), FirstName: "Zed", LastName: "Adams"}
	lower := types.ContactSummary{ID: uuid.New(), FirstName: "abe", LastName: "adams"}
	// uppercase sorts before lowercase above max_in_list
	require.True(t, lessSummary(upper, lower, SortSpec{Field: SortName}))
	require.False(t, lessSummary(lower, upper, SortSpec{Field: SortName}))
}

func TestPaginationDefaults(t *testing.T) {
	p := Pagination{}.WithDefaults(DefaultConfig())
	require.Equal(t, 1, p.Page)
	require.Equal(t, 50, p.PageSize)
	require.NotNil(t, p.Sort)
	require.Equal(t, SortSpec{Field: SortCreatedAt, Desc: true}, *p.Sort)
}
