package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/clinicscribe-backend/internal/data/repos"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
)

type Repos struct {
	Consultations repos.ConsultationRepo
	Dispatches    repos.AppointmentDispatchRepo
}

// wireRepos leaves both repos nil when persistence is disabled.
func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	if db == nil {
		return Repos{}
	}
	log.Info("Wiring repos...")
	return Repos{
		Consultations: repos.NewConsultationRepo(db, log),
		Dispatches:    repos.NewAppointmentDispatchRepo(db, log),
	}
}
