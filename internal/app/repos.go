package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/eventops-backend/internal/data/repos"
	"github.com/yungbote/eventops-backend/internal/pkg/logger"
)

type Repos struct {
	Contact      repos.ContactRepo
	Occurrence   repos.OccurrenceRepo
	Registration repos.RegistrationRepo
	Volunteer    repos.VolunteerRepo
	Segment      repos.SegmentRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Contact:      repos.NewContactRepo(db, log),
		Occurrence:   repos.NewOccurrenceRepo(db, log),
		Registration: repos.NewRegistrationRepo(db, log),
		Volunteer:    repos.NewVolunteerRepo(db, log),
		Segment:      repos.NewSegmentRepo(db, log),
	}
}
