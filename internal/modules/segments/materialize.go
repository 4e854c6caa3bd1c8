package segments

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.einride.tech/aip/ordering"

	types "github.com/yungbote/eventops-backend/internal/domain"
)

type SortField string

const (
	SortName      SortField = "name"
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
)

// sortColumns maps every sortable field to its contacts columns.
var sortColumns = map[SortField][]string{
	SortName:      {"last_name", "first_name"},
	SortCreatedAt: {"created_at"},
	SortUpdatedAt: {"updated_at"},
}

type SortSpec struct {
	Field SortField
	Desc  bool
}

func (s SortSpec) MarshalJSON() ([]byte, error) {
	dir := "asc"
	if s.Desc {
		dir = "desc"
	}
	return json.Marshal(struct {
		Field     SortField `json:"field"`
		Direction string    `json:"direction"`
	}{Field: s.Field, Direction: dir})
}

// UnmarshalJSON accepts {"field":"name","direction":"desc"}. Only "desc"
// sorts descending; a missing direction is ascending.
func (s *SortSpec) UnmarshalJSON(data []byte) error {
	var raw struct {
		Field     string `json:"field"`
		Direction string `json:"direction"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Field = normalizeSortField(raw.Field)
	s.Desc = strings.EqualFold(strings.TrimSpace(raw.Direction), "desc")
	return nil
}

var snakeSortFields = map[string]SortField{
	"name":       SortName,
	"created_at": SortCreatedAt,
	"createdat":  SortCreatedAt,
	"updated_at": SortUpdatedAt,
	"updatedat":  SortUpdatedAt,
}

func normalizeSortField(f string) SortField {
	key := strings.ToLower(strings.TrimSpace(f))
	if known, ok := snakeSortFields[key]; ok {
		return known
	}
	return SortField(strings.TrimSpace(f))
}

// ParseOrderBy reads an AIP-132 order_by string such as "created_at desc".
// Only the first field is used. ok is false for empty or unparsable input;
// callers fall back to the default sort.
func ParseOrderBy(orderBy string) (SortSpec, bool) {
	if strings.TrimSpace(orderBy) == "" {
		return SortSpec{}, false
	}
	var ob ordering.OrderBy
	if err := ob.UnmarshalString(strings.TrimSpace(orderBy)); err != nil || len(ob.Fields) == 0 {
		return SortSpec{}, false
	}
	first := ob.Fields[0]
	return SortSpec{Field: normalizeSortField(first.Path), Desc: first.Desc}, true
}

// Pagination selects one page of a segment. Zero values take defaults.
type Pagination struct {
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
	Sort     *SortSpec `json:"sort,omitempty"`
}

func (p Pagination) WithDefaults(cfg Config) Pagination {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = cfg.Pagination.DefaultPageSize
	}
	if p.Sort == nil {
		s := cfg.defaultSort()
		p.Sort = &s
	}
	return p
}

// ValidatePagination enforces page >= 1 and 1 <= pageSize <= max, and
// rejects pages whose offset would not fit in an int.
func ValidatePagination(p Pagination, cfg Config) error {
	if p.Page < 1 {
		return newValidationError("page", "must be >= 1")
	}
	if p.PageSize < 1 || p.PageSize > cfg.Pagination.MaxPageSize {
		return newValidationError("pageSize", "must be between 1 and "+itoa(cfg.Pagination.MaxPageSize))
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return newValidationError("page", "is too large")
	}
	return nil
}

// Materializer turns an id set into one sorted page of contact summaries.
type Materializer struct {
	contacts ContactStore
	cfg      Config
}

func NewMaterializer(contacts ContactStore, cfg Config) Materializer {
	return Materializer{contacts: contacts, cfg: cfg}
}

// ResolveSort returns s when its field is allowed, else the default sort.
func (m Materializer) ResolveSort(s *SortSpec) SortSpec {
	if s == nil || !m.cfg.sortAllowed(s.Field) {
		return m.cfg.defaultSort()
	}
	return *s
}

// Materialize returns the requested page and the full match count. Sorting
// is done by the contact store over the whole set; ids are passed in byte
// order with id as the final tie-break so pages are stable.
func (m Materializer) Materialize(ctx context.Context, ids IDSet, tenantID uuid.UUID, page, pageSize int, sortSpec *SortSpec) ([]types.ContactSummary, int, error) {
	total := ids.Len()
	// page-1 > (total-1)/pageSize is offset >= total without the multiply
	if total == 0 || page < 1 || pageSize <= 0 || page-1 > (total-1)/pageSize {
		return []types.ContactSummary{}, total, nil
	}
	offset := (page - 1) * pageSize
	resolved := m.ResolveSort(sortSpec)
	order := orderColumns(resolved)
	list := ids.Sorted()

	if len(list) <= m.cfg.Materialize.MaxInList {
		rows, err := m.contacts.ContactSummaries(ctx, tenantID, list, order, pageSize, offset)
		if err != nil {
			return nil, 0, err
		}
		return nonNil(rows), total, nil
	}

	pageIDs, err := m.pageFromSortKeys(ctx, tenantID, list, resolved, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}
	if len(pageIDs) == 0 {
		return []types.ContactSummary{}, total, nil
	}
	rows, err := m.contacts.ContactSummaries(ctx, tenantID, pageIDs, order, len(pageIDs), 0)
	if err != nil {
		return nil, 0, err
	}
	return nonNil(rows), total, nil
}

// pageFromSortKeys handles sets too large for one IN list: sort keys are
// fetched in batches, ordered in memory, and the page is cut from them.
func (m Materializer) pageFromSortKeys(ctx context.Context, tenantID uuid.UUID, list []uuid.UUID, s SortSpec, offset, pageSize int) ([]uuid.UUID, error) {
	batch := m.cfg.Materialize.SortKeyBatch
	keys := make([]types.ContactSummary, 0, len(list))
	for start := 0; start < len(list); start += batch {
		end := start + batch
		if end > len(list) {
			end = len(list)
		}
		part, err := m.contacts.ContactSortKeys(ctx, tenantID, list[start:end])
		if err != nil {
			return nil, err
		}
		keys = append(keys, part...)
	}
	sort.SliceStable(keys, func(i, j int) bool { return lessSummary(keys[i], keys[j], s) })
	if offset < 0 || offset >= len(keys) {
		return nil, nil
	}
	end := offset + pageSize
	if end > len(keys) {
		end = len(keys)
	}
	out := make([]uuid.UUID, 0, end-offset)
	for _, k := range keys[offset:end] {
		out = append(out, k.ID)
	}
	return out, nil
}

func orderColumns(s SortSpec) []OrderColumn {
	cols := sortColumns[s.Field]
	out := make([]OrderColumn, 0, len(cols)+1)
	for _, c := range cols {
		out = append(out, OrderColumn{Column: c, Desc: s.Desc})
	}
	return append(out, OrderColumn{Column: "id"})
}

func lessSummary(a, b types.ContactSummary, s SortSpec) bool {
	c := 0
	switch s.Field {
	case SortName:
		c = strings.Compare(a.LastName, b.LastName)
		if c == 0 {
			c = strings.Compare(a.FirstName, b.FirstName)
		}
	case SortUpdatedAt:
		c = compareTime(a.UpdatedAt, b.UpdatedAt)
	default:
		c = compareTime(a.CreatedAt, b.CreatedAt)
	}
	if s.Desc {
		c = -c
	}
	if c != 0 {
		return c < 0
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func nonNil(rows []types.ContactSummary) []types.ContactSummary {
	if rows == nil {
		return []types.ContactSummary{}
	}
	return rows
}
