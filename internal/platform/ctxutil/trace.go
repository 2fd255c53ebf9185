package ctxutil

import "context"

type traceDataKey struct{}

type TraceData struct {
	TraceID   string
	RequestID string
	SessionID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(Default(ctx), traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// WithSessionID records the consultation session on the trace data, creating it if needed.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	td := GetTraceData(ctx)
	if td == nil {
		return WithTraceData(ctx, &TraceData{SessionID: sessionID})
	}
	cp := *td
	cp.SessionID = sessionID
	return WithTraceData(ctx, &cp)
}

func SessionID(ctx context.Context) string {
	if td := GetTraceData(ctx); td != nil {
		return td.SessionID
	}
	return ""
}
