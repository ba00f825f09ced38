package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
)

const tracerName = "github.com/yungbote/agilecoach-backend/internal/platform/llm"

// Observer receives one sample per Generate call.
type Observer interface {
	ObserveLLMRequest(model, schema, status string, dur time.Duration, inputTokens, outputTokens int)
}

type instrumented struct {
	next Provider
	log  *logger.Logger
	obs  Observer
}

// Instrument wraps p with request logging and, when obs is non-nil, metrics.
func Instrument(p Provider, log *logger.Logger, obs Observer) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &instrumented{next: p, log: log.With("component", "LLMProvider"), obs: obs}
}

func (i *instrumented) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	schema := ""
	if req.Schema != nil {
		schema = req.Schema.Name
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "llm.generate")
	span.SetAttributes(
		attribute.String("llm.model", i.next.ModelID()),
		attribute.String("llm.schema", schema),
	)
	defer span.End()

	resp, err := i.next.Generate(ctx, req)
	dur := time.Since(start)

	status := "success"
	in, out := 0, 0
	if err != nil {
		status = errorStatus(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		i.log.Warn("llm request failed", "model", i.next.ModelID(), "schema", schema, "duration_ms", dur.Milliseconds(), "error", err)
	} else {
		in, out = resp.Usage.InputTokens, resp.Usage.OutputTokens
		span.SetAttributes(attribute.Int("llm.input_tokens", in), attribute.Int("llm.output_tokens", out))
		i.log.Debug("llm request", "model", resp.Model, "schema", schema, "duration_ms", dur.Milliseconds(), "input_tokens", in, "output_tokens", out)
	}
	if i.obs != nil {
		i.obs.ObserveLLMRequest(i.next.ModelID(), schema, status, dur, in, out)
	}
	return resp, err
}

func (i *instrumented) ModelID() string { return i.next.ModelID() }

func errorStatus(err error) string {
	switch err.(type) {
	case *ErrRateLimit:
		return "rate_limited"
	case *ErrInvalidResponse:
		return "invalid_response"
	default:
		return "unavailable"
	}
}
