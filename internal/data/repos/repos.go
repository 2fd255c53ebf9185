package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/clinicscribe-backend/internal/data/repos/consultation"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
)

type ConsultationRepo = consultation.ConsultationRepo
type AppointmentDispatchRepo = consultation.AppointmentDispatchRepo

func NewConsultationRepo(db *gorm.DB, baseLog *logger.Logger) ConsultationRepo {
	return consultation.NewConsultationRepo(db, baseLog)
}

func NewAppointmentDispatchRepo(db *gorm.DB, baseLog *logger.Logger) AppointmentDispatchRepo {
	return consultation.NewAppointmentDispatchRepo(db, baseLog)
}
