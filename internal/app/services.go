package app

import (
	"github.com/yungbote/clinicscribe-backend/internal/appointment"
	"github.com/yungbote/clinicscribe-backend/internal/clinical"
	"github.com/yungbote/clinicscribe-backend/internal/observability"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
	"github.com/yungbote/clinicscribe-backend/internal/services"
	"github.com/yungbote/clinicscribe-backend/internal/speech"
)

type Services struct {
	Transcriber  *speech.Transcriber
	Relabeler    *clinical.Relabeler
	Extractor    *clinical.Extractor
	Plans        *clinical.PlanExtractor
	Chat         *clinical.Chat
	Appointments *appointment.Dispatcher
	Consultation services.ConsultationService
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, reposet Repos, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	out := Services{
		Transcriber: speech.NewTranscriber(log, clients.Recognizer, cfg.Roles, metrics),
		Relabeler:   clinical.NewRelabeler(log, clients.OpenAI, metrics),
		Extractor:   clinical.NewExtractor(log, clients.OpenAI, metrics),
		Plans:       clinical.NewPlanExtractor(log, clients.OpenAI, metrics),
		Chat:        clinical.NewChat(log, clients.OpenAI, metrics),
	}
	mailer := appointment.NewSendGridMailer(log, clients.SendGrid, cfg.EmailEnabled)
	out.Appointments = appointment.NewDispatcher(log, out.Plans, mailer, metrics)

	out.Consultation = services.NewConsultationService(log, services.ConsultationConfig{
		Speech: cfg.Speech,
		Roles:  cfg.Roles,
	}, services.ConsultationDeps{
		Transcriber:   out.Transcriber,
		Relabeler:     out.Relabeler,
		Extractor:     out.Extractor,
		Appointments:  out.Appointments,
		Chat:          out.Chat,
		Consultations: reposet.Consultations,
		Dispatches:    reposet.Dispatches,
	})
	return out
}
