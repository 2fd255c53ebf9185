package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/clinicscribe-backend/internal/http"
	"github.com/yungbote/clinicscribe-backend/internal/observability"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:                 log,
		Metrics:             metrics,
		ServiceName:         cfg.ServiceName,
		CORSOrigins:         cfg.CORSOrigins,
		HealthHandler:       handlers.Health,
		ConsultationHandler: handlers.Consultation,
	})
}
