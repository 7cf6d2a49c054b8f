package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/airlockhq/airlock/pkg/airlockerr"
	"github.com/airlockhq/airlock/pkg/driver"
	"github.com/airlockhq/airlock/pkg/policy"
	"github.com/airlockhq/airlock/pkg/session"
	"github.com/airlockhq/airlock/pkg/tool"
)

// ListWindowsTool returns the driver's current window list for a session.
type ListWindowsTool struct {
	Sessions *session.Manager
	Driver   driver.Capability
}

func (t *ListWindowsTool) Name() string        { return "list_windows" }
func (t *ListWindowsTool) Title() string       { return "List windows" }
func (t *ListWindowsTool) Description() string { return "Lists the session's current window surfaces." }

func (t *ListWindowsTool) InputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{"sessionId": {Type: tool.TypeString, Required: true}}}
}

func (t *ListWindowsTool) OutputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{"windows": {Type: tool.TypeArray, Required: true}}}
}

func (t *ListWindowsTool) AllowedModes() []policy.Mode {
	return []policy.Mode{policy.ModeSafe, policy.ModeStandard, policy.ModeTrusted}
}

func (t *ListWindowsTool) ReadOnlyHint() bool { return true }

func (t *ListWindowsTool) Handle(ctx context.Context, params map[string]any, dctx *tool.DispatchContext) (*tool.Output, error) {
	sessionID, _ := params["sessionId"].(string)
	managed, err := tool.ResolveManagedSession(t.Sessions, session.ID(sessionID))
	if err != nil {
		return nil, err
	}
	if managed.DriverSession == nil {
		return nil, airlockerr.New(airlockerr.SessionNotFound, "session has no active driver session")
	}

	windows, err := t.Driver.GetWindows(ctx, managed.DriverSession)
	if err != nil {
		return nil, airlockerr.Wrap(err, airlockerr.InternalError, "get windows failed")
	}
	managed.Windows = windows

	out := make([]map[string]any, 0, len(windows))
	for _, w := range windows {
		out = append(out, map[string]any{
			"windowId": string(w.WindowID),
			"title":    w.Title,
			"url":      w.URL,
			"kind":     string(w.Kind),
			"focused":  w.Focused,
			"visible":  w.Visible,
		})
	}
	return &tool.Output{Data: map[string]any{"windows": out}}, nil
}

// WaitForWindowTool polls the driver's window list every 500ms until a
// window matching titleContains/urlContains appears or timeoutMs elapses
// (spec.md §5: "wait_for_window polls every 500 ms until timeoutMs").
type WaitForWindowTool struct {
	Sessions *session.Manager
	Driver   driver.Capability
}

const waitForWindowPollInterval = 500 * time.Millisecond

func (t *WaitForWindowTool) Name() string  { return "wait_for_window" }
func (t *WaitForWindowTool) Title() string { return "Wait for window" }
func (t *WaitForWindowTool) Description() string {
	return "Polls for a window matching a title/url substring until it appears or times out."
}

func (t *WaitForWindowTool) InputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{
		"sessionId":    {Type: tool.TypeString, Required: true},
		"titleContains": {Type: tool.TypeString},
		"urlContains":   {Type: tool.TypeString},
		"timeoutMs":     {Type: tool.TypeNumber},
	}}
}

func (t *WaitForWindowTool) OutputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{"windowId": {Type: tool.TypeString, Required: true}}}
}

func (t *WaitForWindowTool) AllowedModes() []policy.Mode {
	return []policy.Mode{policy.ModeSafe, policy.ModeStandard, policy.ModeTrusted}
}

func (t *WaitForWindowTool) ReadOnlyHint() bool { return true }

func (t *WaitForWindowTool) Handle(ctx context.Context, params map[string]any, dctx *tool.DispatchContext) (*tool.Output, error) {
	sessionID, _ := params["sessionId"].(string)
	titleContains, _ := params["titleContains"].(string)
	urlContains, _ := params["urlContains"].(string)
	timeoutMs, _ := params["timeoutMs"].(float64)
	timeout := 10 * time.Second
	if timeoutMs > 0 {
		timeout = time.Duration(timeoutMs) * time.Millisecond
	}

	managed, err := tool.ResolveManagedSession(t.Sessions, session.ID(sessionID))
	if err != nil {
		return nil, err
	}
	if managed.DriverSession == nil {
		return nil, airlockerr.New(airlockerr.SessionNotFound, "session has no active driver session")
	}

	deadline, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(waitForWindowPollInterval)
	defer ticker.Stop()

	for {
		windows, err := t.Driver.GetWindows(deadline, managed.DriverSession)
		if err == nil {
			managed.Windows = windows
			for _, w := range windows {
				if matchesWindow(w, titleContains, urlContains) {
					return &tool.Output{Data: map[string]any{"windowId": string(w.WindowID)}}, nil
				}
			}
		}

		select {
		case <-deadline.Done():
			return nil, airlockerr.New(airlockerr.WindowNotFound, "timed out waiting for matching window")
		case <-ticker.C:
		}
	}
}

func matchesWindow(w driver.Window, titleContains, urlContains string) bool {
	if titleContains == "" && urlContains == "" {
		return false
	}
	if titleContains != "" && !strings.Contains(w.Title, titleContains) {
		return false
	}
	if urlContains != "" && !strings.Contains(w.URL, urlContains) {
		return false
	}
	return true
}
