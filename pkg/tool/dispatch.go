package tool

import (
	"context"
	"time"

	"github.com/airlockhq/airlock/pkg/airlockerr"
	"github.com/airlockhq/airlock/pkg/eventlog"
)

// Dispatcher composes the registry and its fixed middleware chain into a
// single entrypoint, adapted from the teacher's Registry.Execute/
// ExecuteWithContext pair (SPEC_FULL.md §4.5).
type Dispatcher struct {
	registry *Registry
	chain    Middleware
}

// DispatchOptions tunes the dispatcher's non-dependency behavior.
type DispatchOptions struct {
	DefaultTimeout time.Duration
	PerToolTimeout map[string]time.Duration
}

// NewDispatcher builds a Dispatcher over registry with the fixed,
// spec-ordered middleware chain: validation, mode gate, confirmation
// gate, timeout, telemetry.
func NewDispatcher(registry *Registry, opts DispatchOptions) *Dispatcher {
	timeout := opts.DefaultTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	chain := Chain(
		Validation(),
		ModeGate(),
		ConfirmationGate(),
		Timeout(timeout, opts.PerToolTimeout),
		Telemetry(),
	)
	return &Dispatcher{registry: registry, chain: chain}
}

// Dispatch runs the six-step invocation protocol for toolName: resolve
// the tool, run it through the middleware chain, wrap the result in the
// dispatch envelope, and record it in dctx.EventLog with params redacted
// and a result summary (SPEC_FULL.md §4.5, §4.7).
func (d *Dispatcher) Dispatch(ctx context.Context, toolName string, params map[string]any, confirmationID, sessionID string, dctx *DispatchContext) (*Output, error) {
	t, ok := d.registry.Get(toolName)
	if !ok {
		return nil, airlockerr.Newf(airlockerr.InvalidInput, "unknown tool %q", toolName)
	}
	if params == nil {
		params = map[string]any{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	startedAt := time.Now()
	ec := &ExecutionContext{
		GoContext:      ctx,
		Ctx:            dctx,
		ToolName:       toolName,
		Tool:           t,
		SessionID:      sessionID,
		Params:         params,
		StartedAt:      startedAt,
		Meta:           make(map[string]any),
		ConfirmationID: confirmationID,
	}

	handler := func(ec *ExecutionContext) (*Output, error) {
		out, err := ec.Tool.Handle(ec.GoContext, ec.Params, ec.Ctx)
		if err != nil {
			if _, ok := airlockerr.As(err); ok {
				return out, err
			}
			return out, airlockerr.Internal(err)
		}
		return out, nil
	}

	out, err := d.chain(handler)(ec)
	d.record(dctx, toolName, sessionID, params, startedAt, out, err)
	return out, err
}

func (d *Dispatcher) record(dctx *DispatchContext, toolName, sessionID string, params map[string]any, startedAt time.Time, out *Output, err error) {
	if dctx == nil || dctx.EventLog == nil {
		return
	}
	summary := eventlog.ResultSummary{Status: "ok"}
	if err != nil {
		summary.Status = "error"
		summary.Code = string(airlockerr.CodeOf(err))
		if e, ok := airlockerr.As(err); ok {
			summary.Message = e.Message
		} else {
			summary.Message = err.Error()
		}
	} else if out != nil && out.Meta != nil {
		if msg, ok := out.Meta["message"].(string); ok {
			summary.Message = msg
		}
	}

	var windowID string
	if windowAny, ok := params["windowId"]; ok {
		if s, ok := windowAny.(string); ok {
			windowID = s
		}
	}

	dctx.EventLog.Record(eventlog.Event{
		ToolName:   toolName,
		SessionID:  sessionID,
		WindowID:   windowID,
		Params:     params,
		Result:     summary,
		DurationMs: time.Since(startedAt).Milliseconds(),
	})
}
