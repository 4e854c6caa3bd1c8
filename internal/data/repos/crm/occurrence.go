package crm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/eventops-backend/internal/domain"
	"github.com/yungbote/eventops-backend/internal/pkg/dbctx"
	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

type OccurrenceRepo interface {
	Create(dbc dbctx.Context, occurrences []*types.EventOccurrence) ([]*types.EventOccurrence, error)
	// GetByID returns nil, nil when no live occurrence matches.
	GetByID(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.EventOccurrence, error)
	// GetLatestBefore returns the live occurrence with the greatest start
	// strictly before the given time, or nil, nil.
	GetLatestBefore(dbc dbctx.Context, tenantID uuid.UUID, before time.Time) (*types.EventOccurrence, error)
}

type occurrenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOccurrenceRepo(db *gorm.DB, baseLog *logger.Logger) OccurrenceRepo {
	return &occurrenceRepo{db: db, log: baseLog.With("repo", "OccurrenceRepo")}
}

func (r *occurrenceRepo) Create(dbc dbctx.Context, occurrences []*types.EventOccurrence) ([]*types.EventOccurrence, error) {
	if len(occurrences) == 0 {
		return []*types.EventOccurrence{}, nil
	}
	if err := dbc.DB(r.db).Create(&occurrences).Error; err != nil {
		return nil, err
	}
	return occurrences, nil
}

func (r *occurrenceRepo) GetByID(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.EventOccurrence, error) {
	if tenantID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var occ types.EventOccurrence
	err := dbc.DB(r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Limit(1).
		Find(&occ).Error
	if err != nil {
		return nil, err
	}
	if occ.ID == uuid.Nil {
		return nil, nil
	}
	return &occ, nil
}

func (r *occurrenceRepo) GetLatestBefore(dbc dbctx.Context, tenantID uuid.UUID, before time.Time) (*types.EventOccurrence, error) {
	if tenantID == uuid.Nil {
		return nil, nil
	}
	var occ types.EventOccurrence
	err := dbc.DB(r.db).
		Where("tenant_id = ? AND starts_at < ?", tenantID, before).
		Order("starts_at DESC").
		Limit(1).
		Find(&occ).Error
	if err != nil {
		return nil, err
	}
	if occ.ID == uuid.Nil {
		return nil, nil
	}
	return &occ, nil
}
