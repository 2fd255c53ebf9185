package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
)

func TestInitOTelDisabledReturnsNoopShutdown(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")
	shutdown := InitOTel(context.Background(), logger.Nop(), OtelConfig{ServiceName: "test"})
	if shutdown == nil {
		t.Fatalf("shutdown func should never be nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}

func TestSpanHelpersWithoutProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "clinical.extract")
	if ctx == nil || span == nil {
		t.Fatalf("expected span and context")
	}
	EndSpan(span, errors.New("oracle down"))
}

func TestOtelHeaders(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-api-key=abc, bad ,x-team=scribe")
	got := otelHeaders()
	if len(got) != 2 || got["x-api-key"] != "abc" || got["x-team"] != "scribe" {
		t.Fatalf("unexpected headers: %v", got)
	}
}
