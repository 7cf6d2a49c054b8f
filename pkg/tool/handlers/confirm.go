// Package handlers implements the per-tool logic expressed through the
// shared dispatch contract in pkg/tool (SPEC_FULL.md §4.5's "Tool
// handlers" component). Each Tool is a thin adapter over pkg/driver,
// pkg/session, and pkg/refmap, grounded on the teacher's
// pkg/tool/builtin tool bodies for schema/handler shape.
package handlers

import (
	"context"
	"time"

	"github.com/airlockhq/airlock/pkg/policy"
	"github.com/airlockhq/airlock/pkg/tool"
)

// ConfirmTool looks up a pending confirmation and stamps it confirmed,
// without re-executing the originating tool (spec.md §4.2, §9(a)).
type ConfirmTool struct{}

func (t *ConfirmTool) Name() string        { return "confirm" }
func (t *ConfirmTool) Title() string       { return "Confirm pending action" }
func (t *ConfirmTool) Description() string { return "Confirms a pending guarded action by id; does not execute it." }

func (t *ConfirmTool) InputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{
		"confirmationId": {Type: tool.TypeString, Required: true},
	}}
}

func (t *ConfirmTool) OutputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{
		"ok":            {Type: tool.TypeBoolean, Required: true},
		"toolName":      {Type: tool.TypeString, Required: true},
		"params":        {Type: tool.TypeObject},
		"confirmedAt":   {Type: tool.TypeString, Required: true},
	}}
}

func (t *ConfirmTool) AllowedModes() []policy.Mode {
	return []policy.Mode{policy.ModeSafe, policy.ModeStandard, policy.ModeTrusted}
}

func (t *ConfirmTool) ReadOnlyHint() bool { return true }

func (t *ConfirmTool) Handle(ctx context.Context, params map[string]any, dctx *tool.DispatchContext) (*tool.Output, error) {
	id, _ := params["confirmationId"].(string)
	pending, err := dctx.Confirmations.Confirm(id)
	if err != nil {
		return nil, err
	}
	return &tool.Output{Data: map[string]any{
		"ok":          true,
		"toolName":    pending.ToolName,
		"params":      pending.Params,
		"confirmedAt": pending.ConfirmedAt.Format(time.RFC3339),
	}}, nil
}
