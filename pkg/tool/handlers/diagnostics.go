package handlers

import (
	"context"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/airlockhq/airlock/pkg/airlockerr"
	"github.com/airlockhq/airlock/pkg/driver"
	"github.com/airlockhq/airlock/pkg/policy"
	"github.com/airlockhq/airlock/pkg/session"
	"github.com/airlockhq/airlock/pkg/tool"
)

// GetConsoleLogsTool returns the driver's captured console messages for
// a window.
type GetConsoleLogsTool struct {
	Sessions *session.Manager
	Driver   driver.Capability
}

func (t *GetConsoleLogsTool) Name() string        { return "get_console_logs" }
func (t *GetConsoleLogsTool) Title() string       { return "Get console logs" }
func (t *GetConsoleLogsTool) Description() string { return "Returns captured console messages for a window." }

func (t *GetConsoleLogsTool) InputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{
		"sessionId": {Type: tool.TypeString, Required: true},
		"windowId":  {Type: tool.TypeString},
	}}
}

func (t *GetConsoleLogsTool) OutputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{"entries": {Type: tool.TypeArray, Required: true}}}
}

func (t *GetConsoleLogsTool) AllowedModes() []policy.Mode {
	return []policy.Mode{policy.ModeSafe, policy.ModeStandard, policy.ModeTrusted}
}

func (t *GetConsoleLogsTool) ReadOnlyHint() bool { return true }

func (t *GetConsoleLogsTool) Handle(ctx context.Context, params map[string]any, dctx *tool.DispatchContext) (*tool.Output, error) {
	sessionID, _ := params["sessionId"].(string)
	windowIDParam, _ := params["windowId"].(string)

	managed, err := tool.ResolveManagedSession(t.Sessions, session.ID(sessionID))
	if err != nil {
		return nil, err
	}
	window, _, err := tool.ResolveWindow(managed, driver.WindowID(windowIDParam), tool.ResolveWindowOptions{SkipTrackAsInteracted: true})
	if err != nil {
		return nil, err
	}
	if managed.DriverSession == nil {
		return nil, airlockerr.New(airlockerr.SessionNotFound, "session has no active driver session")
	}

	entries, err := t.Driver.GetConsoleLogs(ctx, managed.DriverSession, window.WindowID)
	if err != nil {
		return nil, airlockerr.Wrap(err, airlockerr.InternalError, "get console logs failed")
	}
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{"level": e.Level, "text": e.Text, "timestamp": e.Timestamp})
	}
	return &tool.Output{Data: map[string]any{"entries": out}}, nil
}

// GetNetworkLogsTool returns the driver's captured network events for a window.
type GetNetworkLogsTool struct {
	Sessions *session.Manager
	Driver   driver.Capability
}

func (t *GetNetworkLogsTool) Name() string        { return "get_network_logs" }
func (t *GetNetworkLogsTool) Title() string       { return "Get network logs" }
func (t *GetNetworkLogsTool) Description() string { return "Returns captured network events for a window." }

func (t *GetNetworkLogsTool) InputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{
		"sessionId": {Type: tool.TypeString, Required: true},
		"windowId":  {Type: tool.TypeString},
	}}
}

func (t *GetNetworkLogsTool) OutputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{"entries": {Type: tool.TypeArray, Required: true}}}
}

func (t *GetNetworkLogsTool) AllowedModes() []policy.Mode {
	return []policy.Mode{policy.ModeSafe, policy.ModeStandard, policy.ModeTrusted}
}

func (t *GetNetworkLogsTool) ReadOnlyHint() bool { return true }

func (t *GetNetworkLogsTool) Handle(ctx context.Context, params map[string]any, dctx *tool.DispatchContext) (*tool.Output, error) {
	sessionID, _ := params["sessionId"].(string)
	windowIDParam, _ := params["windowId"].(string)

	managed, err := tool.ResolveManagedSession(t.Sessions, session.ID(sessionID))
	if err != nil {
		return nil, err
	}
	window, _, err := tool.ResolveWindow(managed, driver.WindowID(windowIDParam), tool.ResolveWindowOptions{SkipTrackAsInteracted: true})
	if err != nil {
		return nil, err
	}
	if managed.DriverSession == nil {
		return nil, airlockerr.New(airlockerr.SessionNotFound, "session has no active driver session")
	}

	entries, err := t.Driver.GetNetworkLogs(ctx, managed.DriverSession, window.WindowID)
	if err != nil {
		return nil, airlockerr.Wrap(err, airlockerr.InternalError, "get network logs failed")
	}
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{"method": e.Method, "url": e.URL, "status": e.Status, "timestamp": e.Timestamp})
	}
	return &tool.Output{Data: map[string]any{"entries": out}}, nil
}

// RefStaleDiffSuggestion renders a unified diff between the nodes (one
// "ref role name" line each) of the stale snapshot and the current one,
// which InteractTool attaches as a REF_STALE error's "suggestions" detail
// to point at exactly what changed
// (SPEC_FULL.md §7's "actionable suggestions" note; go-difflib is wired
// here per the domain-stack plan).
func RefStaleDiffSuggestion(staleNodes, currentNodes []driver.SnapshotNode) string {
	staleLines := nodeLines(staleNodes)
	currentLines := nodeLines(currentNodes)

	diff := difflib.UnifiedDiff{
		A:        staleLines,
		B:        currentLines,
		FromFile: "stale_snapshot",
		ToFile:   "current_snapshot",
		Context:  2,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil || strings.TrimSpace(text) == "" {
		return "snapshot changed; take a fresh snapshot before retrying"
	}
	return "snapshot changed since this ref was resolved:\n" + text
}

func nodeLines(nodes []driver.SnapshotNode) []string {
	lines := make([]string, 0, len(nodes))
	for _, n := range nodes {
		lines = append(lines, n.Ref+" "+n.Role+" "+n.Name)
	}
	return lines
}
