package crm

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/eventops-backend/internal/domain"
	"github.com/yungbote/eventops-backend/internal/pkg/dbctx"
	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

type VolunteerRepo interface {
	CreateRegistrations(dbc dbctx.Context, regs []*types.VolunteerRegistration) ([]*types.VolunteerRegistration, error)
	CreateAssignments(dbc dbctx.Context, assignments []*types.VolunteerShiftAssignment) ([]*types.VolunteerShiftAssignment, error)
	// VolunteerContactIDs returns live contacts with a live volunteer registration
	// for the occurrence; minShifts > 0 additionally requires that many live
	// shift assignments on one registration.
	VolunteerContactIDs(dbc dbctx.Context, tenantID, occurrenceID uuid.UUID, minShifts *int) ([]uuid.UUID, error)
}

type volunteerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVolunteerRepo(db *gorm.DB, baseLog *logger.Logger) VolunteerRepo {
	return &volunteerRepo{db: db, log: baseLog.With("repo", "VolunteerRepo")}
}

func (r *volunteerRepo) CreateRegistrations(dbc dbctx.Context, regs []*types.VolunteerRegistration) ([]*types.VolunteerRegistration, error) {
	if len(regs) == 0 {
		return []*types.VolunteerRegistration{}, nil
	}
	if err := dbc.DB(r.db).Create(&regs).Error; err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *volunteerRepo) CreateAssignments(dbc dbctx.Context, assignments []*types.VolunteerShiftAssignment) ([]*types.VolunteerShiftAssignment, error) {
	if len(assignments) == 0 {
		return []*types.VolunteerShiftAssignment{}, nil
	}
	if err := dbc.DB(r.db).Create(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *volunteerRepo) VolunteerContactIDs(dbc dbctx.Context, tenantID, occurrenceID uuid.UUID, minShifts *int) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	q := dbc.DB(r.db).
		Table("volunteer_registrations AS vr").
		Where("vr.tenant_id = ? AND vr.occurrence_id = ?", tenantID, occurrenceID).
		Where("vr.deleted_at IS NULL").
		Where("vr.contact_id IS NOT NULL").
		Joins("JOIN contacts AS c ON c.id = vr.contact_id AND c.tenant_id = vr.tenant_id AND c.deleted_at IS NULL")

	if minShifts == nil || *minShifts <= 0 {
		if err := q.Distinct().Pluck("vr.contact_id", &ids).Error; err != nil {
			return nil, err
		}
		return ids, nil
	}

	var rows []uuid.UUID
	err := q.
		Joins("LEFT JOIN volunteer_shift_assignments AS sa ON sa.volunteer_registration_id = vr.id AND sa.deleted_at IS NULL").
		Group("vr.id, vr.contact_id").
		Having("COUNT(sa.id) >= ?", *minShifts).
		Pluck("vr.contact_id", &rows).Error
	if err != nil {
		return nil, err
	}
	// one contact may hold several qualifying registrations
	seen := make(map[uuid.UUID]struct{}, len(rows))
	for _, id := range rows {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
