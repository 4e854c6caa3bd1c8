package crm

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/eventops-backend/internal/domain"
	"github.com/yungbote/eventops-backend/internal/pkg/dbctx"
	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

// OrderColumn is one ORDER BY term; Column must be in sortableContactColumns.
type OrderColumn struct {
	Column string
	Desc   bool
}

var sortableContactColumns = map[string]struct{}{
	"id":         {},
	"first_name": {},
	"last_name":  {},
	"created_at": {},
	"updated_at": {},
}

type ContactRepo interface {
	Create(dbc dbctx.Context, contacts []*types.Contact) ([]*types.Contact, error)
	GetByIDs(dbc dbctx.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*types.Contact, error)
	ListIDs(dbc dbctx.Context, tenantID uuid.UUID) ([]uuid.UUID, error)
	ListSummaries(dbc dbctx.Context, tenantID uuid.UUID, ids []uuid.UUID, order []OrderColumn, limit, offset int) ([]types.ContactSummary, error)
	ListSortKeys(dbc dbctx.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]types.ContactSummary, error)
	SoftDelete(dbc dbctx.Context, tenantID uuid.UUID, ids []uuid.UUID) error
}

type contactRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContactRepo(db *gorm.DB, baseLog *logger.Logger) ContactRepo {
	return &contactRepo{db: db, log: baseLog.With("repo", "ContactRepo")}
}

func (r *contactRepo) Create(dbc dbctx.Context, contacts []*types.Contact) ([]*types.Contact, error) {
	if len(contacts) == 0 {
		return []*types.Contact{}, nil
	}
	if err := dbc.DB(r.db).Create(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *contactRepo) GetByIDs(dbc dbctx.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*types.Contact, error) {
	var out []*types.Contact
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contactRepo) ListIDs(dbc dbctx.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := dbc.DB(r.db).
		Model(&types.Contact{}).
		Where("tenant_id = ?", tenantID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *contactRepo) ListSummaries(dbc dbctx.Context, tenantID uuid.UUID, ids []uuid.UUID, order []OrderColumn, limit, offset int) ([]types.ContactSummary, error) {
	out := []types.ContactSummary{}
	if len(ids) == 0 || limit <= 0 {
		return out, nil
	}
	q := dbc.DB(r.db).
		Model(&types.Contact{}).
		Select("id", "first_name", "last_name", "email", "phone", "created_at", "updated_at").
		Where("tenant_id = ? AND id IN ?", tenantID, ids)
	for _, o := range order {
		if _, ok := sortableContactColumns[o.Column]; !ok {
			r.log.Warn("ignoring unsortable contact column", "column", o.Column)
			continue
		}
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc})
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Limit(limit).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contactRepo) ListSortKeys(dbc dbctx.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]types.ContactSummary, error) {
	out := []types.ContactSummary{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Model(&types.Contact{}).
		Select("id", "first_name", "last_name", "created_at", "updated_at").
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contactRepo) SoftDelete(dbc dbctx.Context, tenantID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Delete(&types.Contact{}).Error
}
