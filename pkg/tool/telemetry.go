package tool

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/airlockhq/airlock/pkg/airlockerr"
)

// tracerName identifies the tracer every dispatch span is emitted under,
// adapted from the teacher's pkg/acp/observability tracing helpers.
const tracerName = "github.com/airlockhq/airlock/pkg/tool"

var (
	attrToolName    = attribute.Key("airlock.tool.name")
	attrSessionID   = attribute.Key("airlock.session.id")
	attrMode        = attribute.Key("airlock.mode")
	attrOutcomeCode = attribute.Key("airlock.outcome.code")
)

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// Telemetry wraps each dispatch in an OpenTelemetry span named after the
// tool, recording the outcome code and any error, per SPEC_FULL.md's
// domain-stack wiring note for go.opentelemetry.io/otel.
func Telemetry() Middleware {
	return func(next Executor) Executor {
		return func(ec *ExecutionContext) (*Output, error) {
			ctx := ec.GoContext
			if ctx == nil {
				ctx = context.Background()
			}
			spanCtx, span := tracer().Start(ctx, "tool.dispatch."+ec.ToolName, trace.WithAttributes(
				attrToolName.String(ec.ToolName),
				attrSessionID.String(ec.SessionID),
				attrMode.String(ec.Ctx.Mode.String()),
			))
			defer span.End()

			original := ec.GoContext
			ec.GoContext = spanCtx
			defer func() { ec.GoContext = original }()

			out, err := next(ec)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				span.SetAttributes(attrOutcomeCode.String(codeOf(err)))
				return out, err
			}
			span.SetStatus(codes.Ok, "")
			span.SetAttributes(attrOutcomeCode.String("OK"))
			return out, nil
		}
	}
}

func codeOf(err error) string {
	return string(airlockerr.CodeOf(err))
}
