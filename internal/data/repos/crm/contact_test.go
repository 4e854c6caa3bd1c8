package crm

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/eventops-backend/internal/data/repos/testutil"
	"github.com/yungbote/eventops-backend/internal/pkg/dbctx"
)

func TestContactRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewContactRepo(db, testutil.Logger(t))

	tenant := uuid.New()
	other := uuid.New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a := testutil.SeedContactAt(t, ctx, tx, tenant, "Ada", "Lovelace", base)
	b := testutil.SeedContactAt(t, ctx, tx, tenant, "Alan", "Turing", base.Add(time.Hour))
	c := testutil.SeedContactAt(t, ctx, tx, tenant, "Grace", "Hopper", base.Add(2*time.Hour))
	foreign := testutil.SeedContactAt(t, ctx, tx, other, "Edsger", "Dijkstra", base)

	ids, err := repo.ListIDs(dbc, tenant)
	if err != nil || len(ids) != 3 {
		t.Fatalf("ListIDs: err=%v len=%d", err, len(ids))
	}

	rows, err := repo.GetByIDs(dbc, tenant, []uuid.UUID{a.ID, foreign.ID})
	if err != nil || len(rows) != 1 || rows[0].ID != a.ID {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}

	all := []uuid.UUID{a.ID, b.ID, c.ID, foreign.ID}
	page, err := repo.ListSummaries(dbc, tenant, all, []OrderColumn{{Column: "created_at", Desc: true}, {Column: "id"}}, 2, 0)
	if err != nil {
		t.Fatalf("ListSummaries: %v", err)
	}
	if len(page) != 2 || page[0].ID != c.ID || page[1].ID != b.ID {
		t.Fatalf("ListSummaries created_at desc: want=[%s %s] got=%v", c.ID, b.ID, page)
	}

	page, err = repo.ListSummaries(dbc, tenant, all, []OrderColumn{{Column: "last_name"}, {Column: "first_name"}, {Column: "id"}}, 10, 1)
	if err != nil {
		t.Fatalf("ListSummaries by name: %v", err)
	}
	if len(page) != 2 || page[0].LastName != "Lovelace" || page[1].LastName != "Turing" {
		t.Fatalf("ListSummaries by name offset 1: got=%v", page)
	}

	page, err = repo.ListSummaries(dbc, tenant, all, []OrderColumn{{Column: "email; DROP TABLE contacts"}}, 10, 0)
	if err != nil || len(page) != 3 {
		t.Fatalf("ListSummaries unsortable column: err=%v len=%d", err, len(page))
	}

	keys, err := repo.ListSortKeys(dbc, tenant, all)
	if err != nil || len(keys) != 3 {
		t.Fatalf("ListSortKeys: err=%v len=%d", err, len(keys))
	}

	if err := repo.SoftDelete(dbc, tenant, []uuid.UUID{b.ID}); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	ids, err = repo.ListIDs(dbc, tenant)
	if err != nil || len(ids) != 2 {
		t.Fatalf("ListIDs after delete: err=%v len=%d", err, len(ids))
	}
}
