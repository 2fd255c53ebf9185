package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/clinicscribe-backend/internal/appointment"
	"github.com/yungbote/clinicscribe-backend/internal/clinical"
	"github.com/yungbote/clinicscribe-backend/internal/data/repos"
	types "github.com/yungbote/clinicscribe-backend/internal/domain"
	"github.com/yungbote/clinicscribe-backend/internal/observability"
	"github.com/yungbote/clinicscribe-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/clinicscribe-backend/internal/pkg/errors"
	"github.com/yungbote/clinicscribe-backend/internal/platform/ctxutil"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
	"github.com/yungbote/clinicscribe-backend/internal/speech"
)

// Stage dependencies. The concrete types live in speech, clinical and
// appointment; tests substitute fakes.
type (
	Transcriber interface {
		Transcribe(ctx context.Context, audio []byte, mimeType string, req speech.TranscribeRequest) speech.Transcription
	}
	TranscriptRelabeler interface {
		Relabel(ctx context.Context, transcript string) (string, bool)
	}
	SOAPExtractor interface {
		Extract(ctx context.Context, transcript string) clinical.Record
	}
	AppointmentProcessor interface {
		ProcessAppointment(ctx context.Context, req appointment.Request) appointment.Result
	}
	QuestionAnswerer interface {
		Ask(ctx context.Context, question string, summary clinical.Summary) (clinical.Reply, error)
	}
)

type ProcessAudioInput struct {
	SessionID string
	Audio     []byte
	MimeType  string
	Realtime  bool
	// Roles overrides the service's role configuration for this call.
	Roles *speech.RoleConfig
}

type ProcessAudioResult struct {
	SessionID          string            `json:"session_id"`
	ConsultationID     string            `json:"consultation_id,omitempty"`
	Transcript         string            `json:"transcript"`
	OriginalTranscript string            `json:"original_transcript,omitempty"`
	Relabeled          bool              `json:"relabeled"`
	Segments           []speech.Segment  `json:"segments"`
	Roles              map[string]string `json:"roles"`
	Granularity        speech.Kind       `json:"granularity"`
	SOAP               clinical.Record   `json:"soap"`
}

type ApprovePlanInput struct {
	SessionID    string
	PlanText     string
	Recipient    string
	Send         bool
	OverrideBody string
}

type ChatInput struct {
	SessionID string
	Question  string
	Summary   map[string]any
}

type ConsultationView struct {
	Consultation *types.Consultation          `json:"consultation"`
	Dispatches   []*types.AppointmentDispatch `json:"dispatches"`
}

type ConsultationConfig struct {
	Speech speech.Options
	Roles  speech.RoleConfig
}

type ConsultationService interface {
	ProcessAudio(ctx context.Context, in ProcessAudioInput) (*ProcessAudioResult, error)
	ApprovePlan(ctx context.Context, in ApprovePlanInput) (*appointment.Result, error)
	Ask(ctx context.Context, in ChatInput) (*clinical.Reply, error)
	Get(ctx context.Context, sessionID string) (*ConsultationView, error)
}

type consultationService struct {
	log           *logger.Logger
	cfg           ConsultationConfig
	transcriber   Transcriber
	relabeler     TranscriptRelabeler
	extractor     SOAPExtractor
	appointments  AppointmentProcessor
	chat          QuestionAnswerer
	consultations repos.ConsultationRepo
	dispatches    repos.AppointmentDispatchRepo
}

type ConsultationDeps struct {
	Transcriber   Transcriber
	Relabeler     TranscriptRelabeler
	Extractor     SOAPExtractor
	Appointments  AppointmentProcessor
	Chat          QuestionAnswerer
	Consultations repos.ConsultationRepo
	Dispatches    repos.AppointmentDispatchRepo
}

// NewConsultationService wires the pipeline. Repos may be nil, in which case
// nothing is persisted and Get reports not found.
func NewConsultationService(baseLog *logger.Logger, cfg ConsultationConfig, deps ConsultationDeps) ConsultationService {
	return &consultationService{
		log:           baseLog.With("service", "ConsultationService"),
		cfg:           cfg,
		transcriber:   deps.Transcriber,
		relabeler:     deps.Relabeler,
		extractor:     deps.Extractor,
		appointments:  deps.Appointments,
		chat:          deps.Chat,
		consultations: deps.Consultations,
		dispatches:    deps.Dispatches,
	}
}

// NewSessionID returns a short correlation id for a consultation session.
func NewSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (s *consultationService) withSession(ctx context.Context, sessionID string) (context.Context, string) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	return ctxutil.WithSessionID(ctxutil.Default(ctx), sessionID), sessionID
}

func (s *consultationService) ProcessAudio(ctx context.Context, in ProcessAudioInput) (*ProcessAudioResult, error) {
	ctx, sessionID := s.withSession(ctx, in.SessionID)
	if len(in.Audio) == 0 {
		return nil, fmt.Errorf("%w: audio is required", apperr.ErrInvalidArgument)
	}
	ctx, span := observability.StartSpan(ctx, "consultation.process_audio")
	var spanErr error
	defer func() { observability.EndSpan(span, spanErr) }()

	roles := s.cfg.Roles
	if in.Roles != nil {
		roles = *in.Roles
	}
	tr := s.transcriber.Transcribe(ctx, in.Audio, in.MimeType, speech.TranscribeRequest{Options: s.cfg.Speech, Roles: &roles})
	if strings.TrimSpace(tr.Transcript) == "" {
		spanErr = apperr.ErrTranscriptionFailed
		s.log.Warn("Empty transcript", "session_id", sessionID, "audio_bytes", len(in.Audio))
		return nil, apperr.ErrTranscriptionFailed
	}

	out := &ProcessAudioResult{
		SessionID:   sessionID,
		Transcript:  tr.Transcript,
		Segments:    tr.Segments,
		Roles:       roleLabels(tr.Roles),
		Granularity: tr.Granularity,
	}
	if in.Realtime && s.relabeler != nil {
		corrected, ok := s.relabeler.Relabel(ctx, tr.Transcript)
		out.OriginalTranscript = tr.Transcript
		out.Transcript = corrected
		out.Relabeled = ok
	}
	out.SOAP = s.extractor.Extract(ctx, out.Transcript)

	if s.consultations != nil {
		row, err := s.newConsultationRow(in, out)
		if err != nil {
			spanErr = err
			return nil, err
		}
		if _, err := s.consultations.Create(dbctx.New(ctx), []*types.Consultation{row}); err != nil {
			spanErr = err
			s.log.Error("Persist consultation failed", "session_id", sessionID, "error", err.Error())
			return nil, fmt.Errorf("persist consultation: %w", err)
		}
		out.ConsultationID = row.ID.String()
	}
	s.log.Info("Consultation processed",
		"session_id", sessionID,
		"realtime", in.Realtime,
		"relabeled", out.Relabeled,
		"segments", len(out.Segments),
	)
	return out, nil
}

func (s *consultationService) newConsultationRow(in ProcessAudioInput, out *ProcessAudioResult) (*types.Consultation, error) {
	segments, err := json.Marshal(out.Segments)
	if err != nil {
		return nil, fmt.Errorf("encode segments: %w", err)
	}
	roles, err := json.Marshal(out.Roles)
	if err != nil {
		return nil, fmt.Errorf("encode roles: %w", err)
	}
	soap, err := json.Marshal(out.SOAP)
	if err != nil {
		return nil, fmt.Errorf("encode soap: %w", err)
	}
	return &types.Consultation{
		ID:                 uuid.New(),
		SessionID:          out.SessionID,
		Realtime:           in.Realtime,
		MimeType:           in.MimeType,
		AudioBytes:         len(in.Audio),
		Granularity:        string(out.Granularity),
		Transcript:         out.Transcript,
		OriginalTranscript: out.OriginalTranscript,
		Relabeled:          out.Relabeled,
		Segments:           datatypes.JSON(segments),
		Roles:              datatypes.JSON(roles),
		SOAP:               datatypes.JSON(soap),
		PlanText:           out.SOAP.Plan,
	}, nil
}

func (s *consultationService) ApprovePlan(ctx context.Context, in ApprovePlanInput) (*appointment.Result, error) {
	ctx, sessionID := s.withSession(ctx, in.SessionID)
	latest, err := s.latest(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	plan := in.PlanText
	if strings.TrimSpace(plan) == "" && latest != nil {
		plan = latest.PlanText
	}

	res := s.appointments.ProcessAppointment(ctx, appointment.Request{
		PlanText:     plan,
		Recipient:    in.Recipient,
		Send:         in.Send,
		OverrideBody: in.OverrideBody,
	})

	if latest != nil && s.dispatches != nil {
		row := &types.AppointmentDispatch{
			ConsultationID: latest.ID,
			SessionID:      sessionID,
			Status:         string(res.Status),
			Recipient:      strings.TrimSpace(in.Recipient),
			SendRequested:  in.Send,
			Appointment:    res.Appointment,
			Message:        res.Message,
			Error:          res.Error,
		}
		if len(res.Medicines) > 0 {
			if b, err := json.Marshal(res.Medicines); err == nil {
				row.Medicines = datatypes.JSON(b)
			}
		}
		if res.Email != nil {
			row.Subject, row.Body = res.Email.Subject, res.Email.Body
		}
		if _, err := s.dispatches.Create(dbctx.New(ctx), []*types.AppointmentDispatch{row}); err != nil {
			// The email may already be out; report the outcome anyway.
			s.log.Error("Record appointment dispatch failed", "session_id", sessionID, "status", string(res.Status), "error", err.Error())
		}
	}
	return &res, nil
}

func (s *consultationService) Ask(ctx context.Context, in ChatInput) (*clinical.Reply, error) {
	ctx, sessionID := s.withSession(ctx, in.SessionID)
	var summary clinical.Summary
	if len(in.Summary) > 0 {
		sum, err := clinical.SummaryFromMap(in.Summary)
		if err != nil {
			return nil, err
		}
		summary = sum
	}
	if summary.Empty() {
		latest, err := s.latest(ctx, in.SessionID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			var rec clinical.Record
			if err := json.Unmarshal(latest.SOAP, &rec); err == nil {
				summary = clinical.SummaryFromRecord(rec)
			}
		}
	}
	reply, err := s.chat.Ask(ctx, in.Question, summary)
	if err != nil {
		return nil, err
	}
	s.log.Info("Chat answered", "session_id", sessionID, "forwarded", reply.ForwardedToDoctor)
	return &reply, nil
}

func (s *consultationService) Get(ctx context.Context, sessionID string) (*ConsultationView, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", apperr.ErrInvalidArgument)
	}
	latest, err := s.latest(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, fmt.Errorf("consultation %s: %w", sessionID, apperr.ErrNotFound)
	}
	view := &ConsultationView{Consultation: latest, Dispatches: []*types.AppointmentDispatch{}}
	if s.dispatches != nil {
		rows, err := s.dispatches.ListByConsultation(dbctx.New(ctx), latest.ID)
		if err != nil {
			return nil, err
		}
		view.Dispatches = rows
	}
	return view, nil
}

func (s *consultationService) latest(ctx context.Context, sessionID string) (*types.Consultation, error) {
	if s.consultations == nil || strings.TrimSpace(sessionID) == "" {
		return nil, nil
	}
	return s.consultations.GetLatestBySession(dbctx.New(ctx), strings.TrimSpace(sessionID))
}

// roleLabels renders speaker ids as JSON object keys.
func roleLabels(roles speech.RoleMap) map[string]string {
	out := make(map[string]string, len(roles))
	for id, role := range roles {
		out[fmt.Sprint(id)] = role
	}
	return out
}
