package ctxutil

import (
	"context"
	"testing"
)

func TestWithSessionIDKeepsTraceFields(t *testing.T) {
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t1", RequestID: "r1"})
	ctx = WithSessionID(ctx, "abcd1234")

	td := GetTraceData(ctx)
	if td == nil {
		t.Fatalf("expected trace data")
	}
	if td.TraceID != "t1" || td.RequestID != "r1" || td.SessionID != "abcd1234" {
		t.Fatalf("unexpected trace data: %+v", td)
	}
	if got := SessionID(context.Background()); got != "" {
		t.Fatalf("unexpected session id on bare context: %q", got)
	}
}
