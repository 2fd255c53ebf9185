package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/clinicscribe-backend/internal/appointment"
	httpMW "github.com/yungbote/clinicscribe-backend/internal/http/middleware"
	"github.com/yungbote/clinicscribe-backend/internal/http/response"
	apperr "github.com/yungbote/clinicscribe-backend/internal/pkg/errors"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
	"github.com/yungbote/clinicscribe-backend/internal/services"
)

// DefaultMaxAudioBytes caps uploaded recordings at 64 MiB.
const DefaultMaxAudioBytes int64 = 64 << 20

type ConsultationHandler struct {
	log           *logger.Logger
	consultations services.ConsultationService
	maxAudioBytes int64
}

func NewConsultationHandler(log *logger.Logger, consultations services.ConsultationService, maxAudioBytes int64) *ConsultationHandler {
	if maxAudioBytes <= 0 {
		maxAudioBytes = DefaultMaxAudioBytes
	}
	return &ConsultationHandler{
		log:           log.With("handler", "ConsultationHandler"),
		consultations: consultations,
		maxAudioBytes: maxAudioBytes,
	}
}

// POST /api/consultations/process-audio (multipart: audio, session_id, is_realtime)
func (h *ConsultationHandler) ProcessAudio(c *gin.Context) {
	fh, err := c.FormFile("audio")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_audio", errors.New("no audio file provided"))
		return
	}
	if fh.Size > h.maxAudioBytes {
		response.RespondError(c, http.StatusRequestEntityTooLarge, "audio_too_large",
			fmt.Errorf("audio file exceeds %d bytes", h.maxAudioBytes))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_audio", err)
		return
	}
	defer f.Close()
	audio, err := io.ReadAll(io.LimitReader(f, h.maxAudioBytes))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_audio", err)
		return
	}

	sessionID := strings.TrimSpace(c.PostForm("session_id"))
	if sessionID == "" {
		sessionID = c.GetString(httpMW.ContextSessionID)
	}
	if sessionID == "" {
		sessionID = services.NewSessionID()
	}
	httpMW.SetSession(c, sessionID)

	mimeType := fh.Header.Get("Content-Type")
	out, err := h.consultations.ProcessAudio(c.Request.Context(), services.ProcessAudioInput{
		SessionID: sessionID,
		Audio:     audio,
		MimeType:  mimeType,
		Realtime:  formBool(c.PostForm("is_realtime")),
	})
	if err != nil {
		if errors.Is(err, apperr.ErrTranscriptionFailed) {
			response.RespondError(c, http.StatusInternalServerError, "transcription_failed", errors.New("Failed to transcribe audio."))
			return
		}
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}

type approvePlanReq struct {
	SessionID    string `json:"session_id"`
	PlanSection  string `json:"plan_section"`
	UserEmail    string `json:"user_email"`
	SendEmail    *bool  `json:"send_email"`
	EmailContent string `json:"email_content"`
}

// POST /api/consultations/approve-plan
func (h *ConsultationHandler) ApprovePlan(c *gin.Context) {
	var req approvePlanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	httpMW.SetSession(c, req.SessionID)
	send := true
	if req.SendEmail != nil {
		send = *req.SendEmail
	}
	res, err := h.consultations.ApprovePlan(c.Request.Context(), services.ApprovePlanInput{
		SessionID:    req.SessionID,
		PlanText:     req.PlanSection,
		Recipient:    req.UserEmail,
		Send:         send,
		OverrideBody: req.EmailContent,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if res.Status == appointment.StatusFailed {
		c.JSON(http.StatusBadGateway, res)
		return
	}
	response.RespondOK(c, res)
}

type chatReq struct {
	SessionID   string         `json:"session_id"`
	Question    string         `json:"question"`
	SOAPSummary map[string]any `json:"soap_summary"`
}

// POST /api/consultations/chat
func (h *ConsultationHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	httpMW.SetSession(c, req.SessionID)
	reply, err := h.consultations.Ask(c.Request.Context(), services.ChatInput{
		SessionID: req.SessionID,
		Question:  req.Question,
		Summary:   req.SOAPSummary,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, reply)
}

// GET /api/consultations/:session_id
func (h *ConsultationHandler) Get(c *gin.Context) {
	sessionID := c.Param("session_id")
	httpMW.SetSession(c, sessionID)
	view, err := h.consultations.Get(c.Request.Context(), sessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

func formBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}
