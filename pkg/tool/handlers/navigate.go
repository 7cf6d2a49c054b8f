package handlers

import (
	"context"

	"github.com/airlockhq/airlock/pkg/airlockerr"
	"github.com/airlockhq/airlock/pkg/driver"
	"github.com/airlockhq/airlock/pkg/policy"
	"github.com/airlockhq/airlock/pkg/session"
	"github.com/airlockhq/airlock/pkg/tool"
)

// NavigateTool drives a window to a URL via the underlying driver's
// navigate action.
type NavigateTool struct {
	Sessions *session.Manager
	Driver   driver.Capability
}

func (t *NavigateTool) Name() string        { return "navigate" }
func (t *NavigateTool) Title() string       { return "Navigate window" }
func (t *NavigateTool) Description() string { return "Navigates the resolved window to a URL." }

func (t *NavigateTool) InputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{
		"sessionId": {Type: tool.TypeString, Required: true},
		"windowId":  {Type: tool.TypeString},
		"url":       {Type: tool.TypeString, Required: true},
	}}
}

func (t *NavigateTool) OutputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{
		"windowId": {Type: tool.TypeString, Required: true},
	}}
}

func (t *NavigateTool) AllowedModes() []policy.Mode {
	return []policy.Mode{policy.ModeSafe, policy.ModeStandard, policy.ModeTrusted}
}

func (t *NavigateTool) ReadOnlyHint() bool { return false }

func (t *NavigateTool) Handle(ctx context.Context, params map[string]any, dctx *tool.DispatchContext) (*tool.Output, error) {
	sessionID, _ := params["sessionId"].(string)
	url, _ := params["url"].(string)
	windowIDParam, _ := params["windowId"].(string)

	managed, err := tool.ResolveManagedSession(t.Sessions, session.ID(sessionID))
	if err != nil {
		return nil, err
	}
	window, strategy, err := tool.ResolveWindow(managed, driver.WindowID(windowIDParam), tool.ResolveWindowOptions{})
	if err != nil {
		return nil, err
	}
	if managed.DriverSession == nil {
		return nil, airlockerr.New(airlockerr.SessionNotFound, "session has no active driver session")
	}

	action := driver.ActionDescriptor{Kind: driver.ActionNavigate, Text: url}
	if err := t.Driver.PerformAction(ctx, managed.DriverSession, window.WindowID, action); err != nil {
		return nil, airlockerr.Wrap(err, airlockerr.InternalError, "navigate action failed")
	}
	t.Sessions.Touch(session.ID(sessionID))

	return &tool.Output{
		Data: map[string]any{"windowId": string(window.WindowID)},
		Meta: map[string]any{"diagnostics": map[string]any{"windowSelection": strategy}},
	}, nil
}
