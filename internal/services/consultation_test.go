package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/clinicscribe-backend/internal/appointment"
	"github.com/yungbote/clinicscribe-backend/internal/clinical"
	"github.com/yungbote/clinicscribe-backend/internal/data/repos"
	"github.com/yungbote/clinicscribe-backend/internal/data/repos/testutil"
	apperr "github.com/yungbote/clinicscribe-backend/internal/pkg/errors"
	"github.com/yungbote/clinicscribe-backend/internal/platform/ctxutil"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
	"github.com/yungbote/clinicscribe-backend/internal/speech"
)

type fakeTranscriber struct {
	out     speech.Transcription
	session string
	req     speech.TranscribeRequest
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string, req speech.TranscribeRequest) speech.Transcription {
	f.session = ctxutil.SessionID(ctx)
	f.req = req
	return f.out
}

type fakeRelabeler struct {
	calls int
	out   string
	ok    bool
}

func (f *fakeRelabeler) Relabel(ctx context.Context, transcript string) (string, bool) {
	f.calls++
	if !f.ok {
		return transcript, false
	}
	return f.out, true
}

type fakeExtractor struct{ got string }

func (f *fakeExtractor) Extract(ctx context.Context, transcript string) clinical.Record {
	f.got = transcript
	return clinical.Record{Subjective: "cough", Objective: clinical.NotAvailable, Assessment: "URI", Plan: "Follow-up in 2 weeks"}
}

type fakeAppointments struct{ got appointment.Request }

func (f *fakeAppointments) ProcessAppointment(ctx context.Context, req appointment.Request) appointment.Result {
	f.got = req
	if req.Send {
		return appointment.Result{Status: appointment.StatusSent, Appointment: "Follow-up in 2 weeks", Email: &appointment.Email{Subject: appointment.Subject, Body: "b"}}
	}
	return appointment.Result{Status: appointment.StatusPreview, Appointment: "Follow-up in 2 weeks", Medicines: []string{"Amoxicillin"}}
}

type fakeChat struct{ got clinical.Summary }

func (f *fakeChat) Ask(ctx context.Context, question string, summary clinical.Summary) (clinical.Reply, error) {
	f.got = summary
	if summary.Empty() {
		return clinical.Reply{}, apperr.ErrInvalidArgument
	}
	return clinical.Reply{Answer: "In two weeks.", Relevant: true}, nil
}

type harness struct {
	svc         ConsultationService
	transcriber *fakeTranscriber
	relabeler   *fakeRelabeler
	extractor   *fakeExtractor
	appts       *fakeAppointments
	chat        *fakeChat
}

func newHarness(t *testing.T, persist bool) *harness {
	t.Helper()
	h := &harness{
		transcriber: &fakeTranscriber{out: speech.Transcription{
			Transcript:  "Doctor: What brings you in?\nPatient: I have a cough.",
			Segments:    []speech.Segment{{SpeakerLabel: "Doctor", Text: "What brings you in?"}, {SpeakerLabel: "Patient", Text: "I have a cough."}},
			Roles:       speech.RoleMap{0: "Doctor", 1: "Patient"},
			Granularity: speech.KindUtterances,
		}},
		relabeler: &fakeRelabeler{out: "Doctor: corrected", ok: true},
		extractor: &fakeExtractor{},
		appts:     &fakeAppointments{},
		chat:      &fakeChat{},
	}
	deps := ConsultationDeps{
		Transcriber:  h.transcriber,
		Relabeler:    h.relabeler,
		Extractor:    h.extractor,
		Appointments: h.appts,
		Chat:         h.chat,
	}
	if persist {
		db := testutil.DB(t)
		deps.Consultations = repos.NewConsultationRepo(db, logger.Nop())
		deps.Dispatches = repos.NewAppointmentDispatchRepo(db, logger.Nop())
	}
	h.svc = NewConsultationService(logger.Nop(), ConsultationConfig{
		Speech: speech.Options{Diarize: true, Language: "en"},
		Roles:  speech.DefaultRoleConfig(),
	}, deps)
	return h
}

func TestProcessAudioStandard(t *testing.T) {
	h := newHarness(t, true)
	out, err := h.svc.ProcessAudio(context.Background(), ProcessAudioInput{SessionID: "ab12cd34", Audio: []byte("wav"), MimeType: "audio/wav"})
	require.NoError(t, err)

	assert.Equal(t, "ab12cd34", out.SessionID)
	assert.Equal(t, "ab12cd34", h.transcriber.session)
	assert.True(t, h.transcriber.req.Options.Diarize)
	assert.Equal(t, 0, h.relabeler.calls)
	assert.Empty(t, out.OriginalTranscript)
	assert.Equal(t, h.transcriber.out.Transcript, h.extractor.got)
	assert.Equal(t, map[string]string{"0": "Doctor", "1": "Patient"}, out.Roles)
	assert.NotEmpty(t, out.ConsultationID)

	view, err := h.svc.Get(context.Background(), "ab12cd34")
	require.NoError(t, err)
	assert.Equal(t, out.ConsultationID, view.Consultation.ID.String())
	assert.Equal(t, "Follow-up in 2 weeks", view.Consultation.PlanText)
}

func TestProcessAudioRealtimeRelabels(t *testing.T) {
	h := newHarness(t, false)
	out, err := h.svc.ProcessAudio(context.Background(), ProcessAudioInput{Audio: []byte("wav"), Realtime: true})
	require.NoError(t, err)

	assert.Len(t, out.SessionID, 8)
	assert.Equal(t, 1, h.relabeler.calls)
	assert.True(t, out.Relabeled)
	assert.Equal(t, "Doctor: corrected", out.Transcript)
	assert.Equal(t, h.transcriber.out.Transcript, out.OriginalTranscript)
	assert.Equal(t, "Doctor: corrected", h.extractor.got)
	assert.Empty(t, out.ConsultationID)
}

func TestProcessAudioEmptyTranscriptFails(t *testing.T) {
	h := newHarness(t, false)
	h.transcriber.out = speech.Transcription{}
	_, err := h.svc.ProcessAudio(context.Background(), ProcessAudioInput{Audio: []byte("wav")})
	assert.ErrorIs(t, err, apperr.ErrTranscriptionFailed)
	assert.Empty(t, h.extractor.got)

	_, err = h.svc.ProcessAudio(context.Background(), ProcessAudioInput{})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestApprovePlanRecordsDispatch(t *testing.T) {
	h := newHarness(t, true)
	_, err := h.svc.ProcessAudio(context.Background(), ProcessAudioInput{SessionID: "s1", Audio: []byte("wav")})
	require.NoError(t, err)

	preview, err := h.svc.ApprovePlan(context.Background(), ApprovePlanInput{SessionID: "s1", Send: false})
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusPreview, preview.Status)
	assert.Equal(t, "Follow-up in 2 weeks", h.appts.got.PlanText, "stored plan used when none is given")

	sent, err := h.svc.ApprovePlan(context.Background(), ApprovePlanInput{SessionID: "s1", PlanText: "Review Friday", Recipient: "pat@example.com", Send: true})
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusSent, sent.Status)
	assert.Equal(t, "Review Friday", h.appts.got.PlanText)

	view, err := h.svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, view.Dispatches, 2)
	statuses := []string{view.Dispatches[0].Status, view.Dispatches[1].Status}
	assert.ElementsMatch(t, []string{"preview", "sent"}, statuses)
}

func TestApprovePlanWithoutConsultation(t *testing.T) {
	h := newHarness(t, true)
	res, err := h.svc.ApprovePlan(context.Background(), ApprovePlanInput{SessionID: "unknown", PlanText: "Follow-up", Send: false})
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusPreview, res.Status)

	_, err = h.svc.Get(context.Background(), "unknown")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestAskUsesGivenOrStoredSummary(t *testing.T) {
	h := newHarness(t, true)
	_, err := h.svc.ProcessAudio(context.Background(), ProcessAudioInput{SessionID: "s2", Audio: []byte("wav")})
	require.NoError(t, err)

	reply, err := h.svc.Ask(context.Background(), ChatInput{SessionID: "s2", Question: "When is my follow-up?", Summary: map[string]any{"P": "Return in 1 week"}})
	require.NoError(t, err)
	assert.Equal(t, "In two weeks.", reply.Answer)
	assert.Equal(t, "Return in 1 week", h.chat.got.Plan)

	_, err = h.svc.Ask(context.Background(), ChatInput{SessionID: "s2", Question: "When is my follow-up?"})
	require.NoError(t, err)
	assert.Equal(t, "Follow-up in 2 weeks", h.chat.got.Plan)

	_, err = h.svc.Ask(context.Background(), ChatInput{SessionID: "none", Question: "Hi?"})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}
