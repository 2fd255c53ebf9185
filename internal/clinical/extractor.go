package clinical

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/clinicscribe-backend/internal/observability"
	"github.com/yungbote/clinicscribe-backend/internal/platform/ctxutil"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
)

const stageSOAP = "soap"

// Extractor turns a transcript into a SOAP Record.
type Extractor struct {
	log     *logger.Logger
	gen     Generator
	metrics *observability.Metrics
}

func NewExtractor(log *logger.Logger, gen Generator, metrics *observability.Metrics) *Extractor {
	return &Extractor{log: log.With("service", "SOAPExtractor"), gen: gen, metrics: metrics}
}

// Extract always returns a Record with all four sections populated.
func (e *Extractor) Extract(ctx context.Context, transcript string) Record {
	ctx = ctxutil.Default(ctx)
	if strings.TrimSpace(transcript) == "" {
		e.metrics.IncFallback(stageSOAP, "empty_input")
		return EmptyRecord()
	}
	ctx, span := observability.StartSpan(ctx, "clinical.soap")
	start := time.Now()
	raw, err := e.gen.GenerateText(ctx, soapSystemPrompt, soapUserPrompt(transcript))
	e.metrics.ObserveOracle(observability.OracleText, stageSOAP, time.Since(start), err)
	observability.EndSpan(span, err)
	if err != nil {
		e.log.Error("SOAP extraction failed", "session_id", ctxutil.SessionID(ctx), "error", err.Error())
		e.metrics.IncFallback(stageSOAP, "oracle_error")
		return EmptyRecord()
	}

	rec, issues, err := ParseRecord(raw)
	if err != nil {
		e.log.Warn("Malformed SOAP response", "session_id", ctxutil.SessionID(ctx), "error", err.Error(), "response_chars", len(raw))
		e.metrics.IncFallback(stageSOAP, "malformed_output")
		return EmptyRecord()
	}
	if len(issues) > 0 {
		e.log.Warn("SOAP response repaired", "session_id", ctxutil.SessionID(ctx), "issues", issues)
		e.metrics.IncFallback(stageSOAP, "repaired")
	}
	e.log.Info("SOAP sections generated", "session_id", ctxutil.SessionID(ctx), "extra_keys", len(rec.Extra))
	return rec
}
