package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/eventops-backend/internal/data/repos/crm"
	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

type ContactRepo = crm.ContactRepo
type OccurrenceRepo = crm.OccurrenceRepo
type RegistrationRepo = crm.RegistrationRepo
type VolunteerRepo = crm.VolunteerRepo
type SegmentRepo = crm.SegmentRepo

type OrderColumn = crm.OrderColumn
type ParticipantFilter = crm.ParticipantFilter

func NewContactRepo(db *gorm.DB, baseLog *logger.Logger) ContactRepo {
	return crm.NewContactRepo(db, baseLog)
}

func NewOccurrenceRepo(db *gorm.DB, baseLog *logger.Logger) OccurrenceRepo {
	return crm.NewOccurrenceRepo(db, baseLog)
}

func NewRegistrationRepo(db *gorm.DB, baseLog *logger.Logger) RegistrationRepo {
	return crm.NewRegistrationRepo(db, baseLog)
}

func NewVolunteerRepo(db *gorm.DB, baseLog *logger.Logger) VolunteerRepo {
	return crm.NewVolunteerRepo(db, baseLog)
}

func NewSegmentRepo(db *gorm.DB, baseLog *logger.Logger) SegmentRepo {
	return crm.NewSegmentRepo(db, baseLog)
}
