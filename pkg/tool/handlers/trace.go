package handlers

import (
	"context"

	"github.com/airlockhq/airlock/pkg/airlockerr"
	"github.com/airlockhq/airlock/pkg/artifact"
	"github.com/airlockhq/airlock/pkg/driver"
	"github.com/airlockhq/airlock/pkg/policy"
	"github.com/airlockhq/airlock/pkg/session"
	"github.com/airlockhq/airlock/pkg/tool"
)

// StartTraceTool begins a driver trace recording for the session,
// recording intent in session.TraceState.Active before the suspension
// point per spec.md §5's "record intent in a single field" invariant.
type StartTraceTool struct {
	Sessions *session.Manager
	Driver   driver.Capability
	Layout   artifact.Layout
}

func (t *StartTraceTool) Name() string        { return "start_trace" }
func (t *StartTraceTool) Title() string       { return "Start trace recording" }
func (t *StartTraceTool) Description() string { return "Starts a driver trace recording for the session." }

func (t *StartTraceTool) InputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{"sessionId": {Type: tool.TypeString, Required: true}}}
}

func (t *StartTraceTool) OutputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{"tracePath": {Type: tool.TypeString, Required: true}}}
}

func (t *StartTraceTool) AllowedModes() []policy.Mode {
	return []policy.Mode{policy.ModeSafe, policy.ModeStandard, policy.ModeTrusted}
}

func (t *StartTraceTool) ReadOnlyHint() bool { return false }

func (t *StartTraceTool) Handle(ctx context.Context, params map[string]any, dctx *tool.DispatchContext) (*tool.Output, error) {
	sessionID, _ := params["sessionId"].(string)
	managed, err := tool.ResolveManagedSession(t.Sessions, session.ID(sessionID))
	if err != nil {
		return nil, err
	}
	if managed.DriverSession == nil {
		return nil, airlockerr.New(airlockerr.SessionNotFound, "session has no active driver session")
	}

	tracePath := t.Layout.TracePath(session.ID(sessionID))
	t.Sessions.SetTraceState(session.ID(sessionID), &session.TraceState{Active: true, TracePath: tracePath})

	if err := t.Driver.StartTracing(ctx, managed.DriverSession); err != nil {
		t.Sessions.SetTraceState(session.ID(sessionID), &session.TraceState{Active: false})
		return nil, airlockerr.Wrap(err, airlockerr.InternalError, "start tracing failed")
	}

	t.Sessions.WrapCleanup(session.ID(sessionID), true, func(cleanupCtx context.Context) error {
		if managed.DriverSession == nil {
			return nil
		}
		return t.Driver.StopTracing(cleanupCtx, managed.DriverSession, tracePath)
	}, nil)

	return &tool.Output{Data: map[string]any{"tracePath": tracePath}}, nil
}

// StopTraceTool ends an in-progress trace recording and writes it to
// the session's deterministic artifact path.
type StopTraceTool struct {
	Sessions *session.Manager
	Driver   driver.Capability
}

func (t *StopTraceTool) Name() string        { return "stop_trace" }
func (t *StopTraceTool) Title() string       { return "Stop trace recording" }
func (t *StopTraceTool) Description() string { return "Stops the session's in-progress trace recording." }

func (t *StopTraceTool) InputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{"sessionId": {Type: tool.TypeString, Required: true}}}
}

func (t *StopTraceTool) OutputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{"tracePath": {Type: tool.TypeString, Required: true}}}
}

func (t *StopTraceTool) AllowedModes() []policy.Mode {
	return []policy.Mode{policy.ModeSafe, policy.ModeStandard, policy.ModeTrusted}
}

func (t *StopTraceTool) ReadOnlyHint() bool { return false }

func (t *StopTraceTool) Handle(ctx context.Context, params map[string]any, dctx *tool.DispatchContext) (*tool.Output, error) {
	sessionID, _ := params["sessionId"].(string)
	managed, err := tool.ResolveManagedSession(t.Sessions, session.ID(sessionID))
	if err != nil {
		return nil, err
	}
	if managed.TraceState == nil || !managed.TraceState.Active {
		return nil, airlockerr.New(airlockerr.InvalidInput, "no trace recording in progress")
	}
	tracePath := managed.TraceState.TracePath

	if managed.DriverSession != nil {
		if err := t.Driver.StopTracing(ctx, managed.DriverSession, tracePath); err != nil {
			return nil, airlockerr.Wrap(err, airlockerr.InternalError, "stop tracing failed")
		}
	}
	t.Sessions.SetTraceState(session.ID(sessionID), &session.TraceState{Active: false, TracePath: tracePath})

	return &tool.Output{Data: map[string]any{"tracePath": tracePath}}, nil
}
