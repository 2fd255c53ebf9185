package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/clinicscribe-backend/internal/http/handlers"
	httpMW "github.com/yungbote/clinicscribe-backend/internal/http/middleware"
	"github.com/yungbote/clinicscribe-backend/internal/observability"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	ConsultationHandler *httpH.ConsultationHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachSessionContext())
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Consultations
		if cfg.ConsultationHandler != nil {
			api.POST("/consultations/process-audio", cfg.ConsultationHandler.ProcessAudio)
			api.POST("/consultations/approve-plan", cfg.ConsultationHandler.ApprovePlan)
			api.POST("/consultations/chat", cfg.ConsultationHandler.Chat)
			api.GET("/consultations/:session_id", cfg.ConsultationHandler.Get)
		}
	}

	return r
}
