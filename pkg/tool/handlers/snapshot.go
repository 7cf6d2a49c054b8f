package handlers

import (
	"context"

	"github.com/airlockhq/airlock/pkg/airlockerr"
	"github.com/airlockhq/airlock/pkg/driver"
	"github.com/airlockhq/airlock/pkg/policy"
	"github.com/airlockhq/airlock/pkg/refmap"
	"github.com/airlockhq/airlock/pkg/session"
	"github.com/airlockhq/airlock/pkg/tool"
)

// SnapshotTool fetches the driver's accessibility tree for a window and
// rebuilds its ref map, bounding node count and per-node text length by
// dctx.Limits.
type SnapshotTool struct {
	Sessions *session.Manager
	Driver   driver.Capability
}

func (t *SnapshotTool) Name() string        { return "get_snapshot" }
func (t *SnapshotTool) Title() string       { return "Get accessibility snapshot" }
func (t *SnapshotTool) Description() string { return "Fetches the accessibility tree for a window and refreshes its ref map." }

func (t *SnapshotTool) InputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{
		"sessionId": {Type: tool.TypeString, Required: true},
		"windowId":  {Type: tool.TypeString},
	}}
}

func (t *SnapshotTool) OutputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{
		"windowId":  {Type: tool.TypeString, Required: true},
		"epoch":     {Type: tool.TypeNumber, Required: true},
		"nodes":     {Type: tool.TypeArray, Required: true},
		"truncated": {Type: tool.TypeBoolean, Required: true},
	}}
}

func (t *SnapshotTool) AllowedModes() []policy.Mode {
	return []policy.Mode{policy.ModeSafe, policy.ModeStandard, policy.ModeTrusted}
}

func (t *SnapshotTool) ReadOnlyHint() bool { return true }

func (t *SnapshotTool) Handle(ctx context.Context, params map[string]any, dctx *tool.DispatchContext) (*tool.Output, error) {
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

	raw, err := t.Driver.GetSnapshot(ctx, managed.DriverSession, window.WindowID)
	if err != nil {
		return nil, airlockerr.Wrap(err, airlockerr.InternalError, "get snapshot failed")
	}

	rm, ok := t.Sessions.GetRefMap(session.ID(sessionID), window.WindowID)
	if !ok {
		rm = refmap.New()
		t.Sessions.SetRefMap(session.ID(sessionID), window.WindowID, rm)
	}
	epoch := rm.RebuildFromSnapshot(raw.Nodes)

	maxNodes := dctx.Limits.MaxNodes
	truncated := raw.Truncated
	nodes := raw.Nodes
	if maxNodes > 0 && len(nodes) > maxNodes {
		nodes = nodes[:maxNodes]
		truncated = true
	}

	maxChars := dctx.Limits.MaxTextCharsPerNode
	out := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		name := n.Name
		if maxChars > 0 && len(name) > maxChars {
			name = name[:maxChars]
		}
		out = append(out, map[string]any{
			"ref":  n.Ref,
			"role": n.Role,
			"name": name,
		})
	}

	return &tool.Output{
		Data: map[string]any{
			"windowId":  string(window.WindowID),
			"epoch":     epoch,
			"nodes":     out,
			"truncated": truncated,
		},
		Meta: map[string]any{"diagnostics": map[string]any{"windowSelection": strategy}},
	}, nil
}
