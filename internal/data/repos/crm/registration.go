package crm

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/eventops-backend/internal/domain"
	"github.com/yungbote/eventops-backend/internal/pkg/dbctx"
	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

// ParticipantFilter narrows participant involvement. Set fields are AND-ed,
// including TierID together with TierName.
type ParticipantFilter struct {
	TierID   *uuid.UUID
	TierName *string
	PeriodID *uuid.UUID
}

type RegistrationRepo interface {
	Create(dbc dbctx.Context, registrations []*types.Registration) ([]*types.Registration, error)
	CreateTiers(dbc dbctx.Context, tiers []*types.RegistrationTier) ([]*types.RegistrationTier, error)
	// ParticipantContactIDs returns distinct live contacts holding a
	// finalized, live registration for the occurrence.
	ParticipantContactIDs(dbc dbctx.Context, tenantID, occurrenceID uuid.UUID, f ParticipantFilter) ([]uuid.UUID, error)
}

type registrationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRegistrationRepo(db *gorm.DB, baseLog *logger.Logger) RegistrationRepo {
	return &registrationRepo{db: db, log: baseLog.With("repo", "RegistrationRepo")}
}

func (r *registrationRepo) Create(dbc dbctx.Context, registrations []*types.Registration) ([]*types.Registration, error) {
	if len(registrations) == 0 {
		return []*types.Registration{}, nil
	}
	if err := dbc.DB(r.db).Create(&registrations).Error; err != nil {
		return nil, err
	}
	return registrations, nil
}

func (r *registrationRepo) CreateTiers(dbc dbctx.Context, tiers []*types.RegistrationTier) ([]*types.RegistrationTier, error) {
	if len(tiers) == 0 {
		return []*types.RegistrationTier{}, nil
	}
	if err := dbc.DB(r.db).Create(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *registrationRepo) ParticipantContactIDs(dbc dbctx.Context, tenantID, occurrenceID uuid.UUID, f ParticipantFilter) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	q := dbc.DB(r.db).
		Table("registrations AS r").
		Where("r.tenant_id = ? AND r.occurrence_id = ?", tenantID, occurrenceID).
		Where("r.finalized = ?", true).
		Where("r.deleted_at IS NULL").
		Where("r.contact_id IS NOT NULL").
		Joins("JOIN contacts AS c ON c.id = r.contact_id AND c.tenant_id = r.tenant_id AND c.deleted_at IS NULL")
	if f.TierID != nil {
		q = q.Where("r.tier_id = ?", *f.TierID)
	}
	if f.TierName != nil {
		q = q.Joins("JOIN registration_tiers AS t ON t.id = r.tier_id AND t.deleted_at IS NULL").
			Where("t.name = ?", *f.TierName)
	}
	if f.PeriodID != nil {
		q = q.Where("r.period_id = ?", *f.PeriodID)
	}
	if err := q.Distinct().Pluck("r.contact_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
