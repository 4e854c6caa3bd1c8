package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/eventops-backend/internal/modules/segments"
	"github.com/yungbote/eventops-backend/internal/observability"
	"github.com/yungbote/eventops-backend/internal/pkg/logger"
	"github.com/yungbote/eventops-backend/internal/services"
)

type Services struct {
	Auth    services.AuthService
	Segment services.SegmentService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	store := segments.NewRepoStore(segments.RepoStoreDeps{
		Contacts:      reposet.Contact,
		Occurrences:   reposet.Occurrence,
		Registrations: reposet.Registration,
		Volunteers:    reposet.Volunteer,
	})
	return Services{
		Auth:    services.NewAuthService(log, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Segment: services.NewSegmentService(db, log, store, segments.LoadConfig(log), reposet.Segment, metrics),
	}
}
