package clinical

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/clinicscribe-backend/internal/observability"
	"github.com/yungbote/clinicscribe-backend/internal/platform/ctxutil"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
)

const stageRelabel = "relabel"

// Relabeler asks the oracle to fix misattributed speaker labels.
type Relabeler struct {
	log     *logger.Logger
	gen     Generator
	metrics *observability.Metrics
}

func NewRelabeler(log *logger.Logger, gen Generator, metrics *observability.Metrics) *Relabeler {
	return &Relabeler{log: log.With("service", "Relabeler"), gen: gen, metrics: metrics}
}

// Relabel returns the corrected transcript and true, or the input unchanged
// and false when the oracle fails or answers with nothing.
func (r *Relabeler) Relabel(ctx context.Context, transcript string) (string, bool) {
	if strings.TrimSpace(transcript) == "" {
		return transcript, false
	}
	ctx = ctxutil.Default(ctx)
	ctx, span := observability.StartSpan(ctx, "clinical.relabel")
	start := time.Now()
	raw, err := r.gen.GenerateText(ctx, relabelSystemPrompt, relabelUserPrompt(transcript))
	r.metrics.ObserveOracle(observability.OracleText, stageRelabel, time.Since(start), err)
	observability.EndSpan(span, err)
	if err != nil {
		r.log.Error("Relabeling failed; keeping original transcript", "session_id", ctxutil.SessionID(ctx), "error", err.Error())
		r.metrics.IncFallback(stageRelabel, "oracle_error")
		return transcript, false
	}
	corrected := StripFence(raw)
	if corrected == "" {
		r.log.Warn("Relabeling returned empty text; keeping original transcript", "session_id", ctxutil.SessionID(ctx))
		r.metrics.IncFallback(stageRelabel, "empty_output")
		return transcript, false
	}
	return corrected, true
}
