package crm

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/eventops-backend/internal/domain"
	"github.com/yungbote/eventops-backend/internal/pkg/dbctx"
	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

type SegmentRepo interface {
	Create(dbc dbctx.Context, segments []*types.Segment) ([]*types.Segment, error)
	GetByID(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.Segment, error)
	ListByTenant(dbc dbctx.Context, tenantID uuid.UUID) ([]*types.Segment, error)
	// SoftDelete reports whether a live segment was deleted.
	SoftDelete(dbc dbctx.Context, tenantID, id uuid.UUID) (bool, error)
}

type segmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSegmentRepo(db *gorm.DB, baseLog *logger.Logger) SegmentRepo {
	return &segmentRepo{db: db, log: baseLog.With("repo", "SegmentRepo")}
}

func (r *segmentRepo) Create(dbc dbctx.Context, segments []*types.Segment) ([]*types.Segment, error) {
	if len(segments) == 0 {
		return []*types.Segment{}, nil
	}
	if err := dbc.DB(r.db).Create(&segments).Error; err != nil {
		return nil, err
	}
	return segments, nil
}

func (r *segmentRepo) GetByID(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.Segment, error) {
	if tenantID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var seg types.Segment
	err := dbc.DB(r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Limit(1).
		Find(&seg).Error
	if err != nil {
		return nil, err
	}
	if seg.ID == uuid.Nil {
		return nil, nil
	}
	return &seg, nil
}

func (r *segmentRepo) ListByTenant(dbc dbctx.Context, tenantID uuid.UUID) ([]*types.Segment, error) {
	out := []*types.Segment{}
	if err := dbc.DB(r.db).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *segmentRepo) SoftDelete(dbc dbctx.Context, tenantID, id uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&types.Segment{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
