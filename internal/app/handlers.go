package app

import (
	httpH "github.com/yungbote/clinicscribe-backend/internal/http/handlers"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
)

type Handlers struct {
	Health       *httpH.HealthHandler
	Consultation *httpH.ConsultationHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(),
		Consultation: httpH.NewConsultationHandler(log, services.Consultation, cfg.MaxAudioBytes),
	}
}
