package ctxutil

import "context"

type traceDataKey struct{}

// TraceData correlates log lines with the request that produced them.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
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

// LogFields returns the correlation key/values present on ctx, ready to
// splice into a logger call.
func LogFields(ctx context.Context) []any {
	var out []any
	if td := GetTraceData(ctx); td != nil {
		if td.TraceID != "" {
			out = append(out, "trace_id", td.TraceID)
		}
		if td.RequestID != "" {
			out = append(out, "request_id", td.RequestID)
		}
	}
	if rd := GetRequestData(ctx); rd != nil {
		out = append(out, "user_id", rd.UserID.String())
		if rd.DemoFallback {
			out = append(out, "demo_user", true)
		}
	}
	return out
}

// Detach copies the request identity and correlation ids onto parent,
// dropping ctx's deadline and cancellation. Background work scheduled by a
// request uses it so its logs still point back at that request.
func Detach(parent, ctx context.Context) context.Context {
	parent = Default(parent)
	if td := GetTraceData(ctx); td != nil {
		cp := *td
		parent = WithTraceData(parent, &cp)
	}
	if rd := GetRequestData(ctx); rd != nil {
		cp := *rd
		parent = WithRequestData(parent, &cp)
	}
	return parent
}
