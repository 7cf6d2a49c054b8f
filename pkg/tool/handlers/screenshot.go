package handlers

import (
	"context"
	"encoding/base64"

	"github.com/airlockhq/airlock/pkg/airlockerr"
	"github.com/airlockhq/airlock/pkg/driver"
	"github.com/airlockhq/airlock/pkg/policy"
	"github.com/airlockhq/airlock/pkg/session"
	"github.com/airlockhq/airlock/pkg/tool"
)

// ScreenshotTool captures a PNG of the resolved window, base64-encoded
// in the result envelope; persistence to artifact.Layout is the
// caller's responsibility.
type ScreenshotTool struct {
	Sessions *session.Manager
	Driver   driver.Capability
}

func (t *ScreenshotTool) Name() string        { return "capture_screenshot" }
func (t *ScreenshotTool) Title() string       { return "Capture screenshot" }
func (t *ScreenshotTool) Description() string { return "Captures a screenshot of the resolved window." }

func (t *ScreenshotTool) InputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{
		"sessionId": {Type: tool.TypeString, Required: true},
		"windowId":  {Type: tool.TypeString},
	}}
}

func (t *ScreenshotTool) OutputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{
		"windowId":  {Type: tool.TypeString, Required: true},
		"imageData": {Type: tool.TypeString, Required: true},
	}}
}

func (t *ScreenshotTool) AllowedModes() []policy.Mode {
	return []policy.Mode{policy.ModeSafe, policy.ModeStandard, policy.ModeTrusted}
}

func (t *ScreenshotTool) ReadOnlyHint() bool { return true }

func (t *ScreenshotTool) Handle(ctx context.Context, params map[string]any, dctx *tool.DispatchContext) (*tool.Output, error) {
	sessionID, _ := params["sessionId"].(string)
	windowIDParam, _ := params["windowId"].(string)

	managed, err := tool.ResolveManagedSession(t.Sessions, session.ID(sessionID))
	if err != nil {
		return nil, err
	}
	window, strategy, err := tool.ResolveWindow(managed, driver.WindowID(windowIDParam), tool.ResolveWindowOptions{SkipTrackAsInteracted: true})
	if err != nil {
		return nil, err
	}
	if managed.DriverSession == nil {
		return nil, airlockerr.New(airlockerr.SessionNotFound, "session has no active driver session")
	}

	data, err := t.Driver.Screenshot(ctx, managed.DriverSession, window.WindowID)
	if err != nil {
		return nil, airlockerr.Wrap(err, airlockerr.InternalError, "screenshot failed")
	}

	return &tool.Output{
		Data: map[string]any{
			"windowId":  string(window.WindowID),
			"imageData": base64.StdEncoding.EncodeToString(data),
		},
		Meta: map[string]any{"diagnostics": map[string]any{"windowSelection": strategy}},
	}, nil
}
