package aggregates

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/agilecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
)

const tracerName = "github.com/yungbote/agilecoach-backend/internal/data/aggregates"

// BaseDeps is shared by every aggregate. Zero fields get working defaults.
type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	CASGuard CASGuard
	// Now defaults to the UTC wall clock.
	Now func() time.Time
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

// executeWrite runs fn in one transaction under a span named op. Whatever
// fn returns is mapped onto a domain error code before hooks see it.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	deps = deps.withDefaults()
	if op == "" {
		op = "aggregate.write"
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	start := time.Now()
	err := MapError(op, deps.Runner.InTx(ctx, fn))
	status := aggregateErrorStatus(err)
	span.SetAttributes(attribute.String("aggregate.status", status))

	switch domainagg.CodeOf(err) {
	case domainagg.CodeConflict:
		deps.Hooks.IncConflict(op)
	case domainagg.CodeRetryable:
		deps.Hooks.IncRetry(op)
	case domainagg.CodeInternal:
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		deps.Log.Error("Aggregate write failed", "op", op, "error", err)
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return err
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	if code := domainagg.CodeOf(err); code != "" {
		return string(code)
	}
	return "failure"
}
