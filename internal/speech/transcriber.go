package speech

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/clinicscribe-backend/internal/observability"
	"github.com/yungbote/clinicscribe-backend/internal/platform/ctxutil"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
)

const stageTranscribe = "transcribe"

// TranscribeRequest carries per-call options. Roles nil means the
// transcriber's default role configuration.
type TranscribeRequest struct {
	Options Options
	Roles   *RoleConfig
}

// Transcription is the speaker-attributed output of one audio input.
type Transcription struct {
	Transcript  string    `json:"transcript"`
	Segments    []Segment `json:"segments"`
	Roles       RoleMap   `json:"roles"`
	Granularity Kind      `json:"granularity"`
}

type Transcriber struct {
	log        *logger.Logger
	recognizer Recognizer
	roles      RoleConfig
	metrics    *observability.Metrics
}

func NewTranscriber(log *logger.Logger, recognizer Recognizer, roles RoleConfig, metrics *observability.Metrics) *Transcriber {
	return &Transcriber{
		log:        log.With("service", "Transcriber"),
		recognizer: recognizer,
		roles:      roles,
		metrics:    metrics,
	}
}

// Transcribe runs recognition, segment reconstruction and role resolution.
// Provider errors and panics never escape: they yield an empty transcription.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, mimeType string, req TranscribeRequest) (out Transcription) {
	ctx = ctxutil.Default(ctx)
	ctx, span := observability.StartSpan(ctx, "speech.transcribe",
		attribute.Int("audio.bytes", len(audio)),
		attribute.Bool("speech.diarize", req.Options.Diarize),
	)
	var spanErr error
	defer func() {
		if r := recover(); r != nil {
			spanErr = fmt.Errorf("transcription panic: %v", r)
			t.log.Error("Transcription recovered from panic", "session_id", ctxutil.SessionID(ctx), "error", spanErr.Error())
			t.metrics.IncFallback(stageTranscribe, "panic")
			out = emptyTranscription()
		}
		observability.EndSpan(span, spanErr)
	}()

	if t.recognizer == nil {
		spanErr = fmt.Errorf("no recognizer configured")
		t.log.Error("Transcription skipped", "session_id", ctxutil.SessionID(ctx), "error", spanErr.Error())
		t.metrics.IncFallback(stageTranscribe, "not_configured")
		return emptyTranscription()
	}

	start := time.Now()
	rec, err := t.recognizer.Recognize(ctx, audio, mimeType, req.Options)
	t.metrics.ObserveOracle(observability.OracleSpeech, stageTranscribe, time.Since(start), err)
	if err != nil {
		spanErr = err
		t.log.Error("Speech recognition failed", "session_id", ctxutil.SessionID(ctx), "error", err.Error())
		t.metrics.IncFallback(stageTranscribe, "oracle_error")
		return emptyTranscription()
	}

	cfg := t.roles
	if req.Roles != nil {
		cfg = *req.Roles
	}
	// Merge on provider speaker ids before relabeling; distinct ids that
	// share a role stay separate turns.
	roles, segments := ResolveRoles(Merge(Reconstruct(rec)), cfg)

	out = Transcription{
		Transcript:  RenderTranscript(segments),
		Segments:    segments,
		Roles:       roles,
		Granularity: rec.Kind,
	}
	span.SetAttributes(
		attribute.String("speech.granularity", string(rec.Kind)),
		attribute.Int("speech.segments", len(segments)),
	)
	t.log.Info("Transcription complete",
		"session_id", ctxutil.SessionID(ctx),
		"granularity", string(rec.Kind),
		"segments", len(segments),
		"speakers", len(roles),
	)
	return out
}

func emptyTranscription() Transcription {
	return Transcription{Segments: []Segment{}, Roles: RoleMap{}, Granularity: KindFlat}
}
