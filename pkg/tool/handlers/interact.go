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

var interactKinds = map[string]driver.ActionKind{
	"click":  driver.ActionClick,
	"type":   driver.ActionType,
	"hover":  driver.ActionHover,
	"press":  driver.ActionPress,
	"scroll": driver.ActionScroll,
	"focus":  driver.ActionFocus,
	"select": driver.ActionSelect,
}

// InteractTool performs a click/type/hover/press/scroll/focus/select
// action against a ref resolved through the session's ref map, or a raw
// css locator.
type InteractTool struct {
	Sessions *session.Manager
	Driver   driver.Capability
}

func (t *InteractTool) Name() string  { return "interact" }
func (t *InteractTool) Title() string { return "Interact with element" }
func (t *InteractTool) Description() string {
	return "Performs click/type/hover/press/scroll/focus/select against a ref or css locator."
}

func (t *InteractTool) InputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{
		"sessionId": {Type: tool.TypeString, Required: true},
		"windowId":  {Type: tool.TypeString},
		"kind":      {Type: tool.TypeString, Required: true},
		"ref":       {Type: tool.TypeString},
		"epoch":     {Type: tool.TypeNumber},
		"locator":   {Type: tool.TypeString},
		"text":      {Type: tool.TypeString},
		"key":       {Type: tool.TypeString},
	}}
}

func (t *InteractTool) OutputSchema() tool.Schema {
	return tool.Schema{Fields: map[string]tool.Field{
		"windowId": {Type: tool.TypeString, Required: true},
	}}
}

func (t *InteractTool) AllowedModes() []policy.Mode {
	return []policy.Mode{policy.ModeSafe, policy.ModeStandard, policy.ModeTrusted}
}

func (t *InteractTool) ReadOnlyHint() bool { return false }

func (t *InteractTool) Handle(ctx context.Context, params map[string]any, dctx *tool.DispatchContext) (*tool.Output, error) {
	sessionID, _ := params["sessionId"].(string)
	windowIDParam, _ := params["windowId"].(string)
	kindParam, _ := params["kind"].(string)
	refParam, _ := params["ref"].(string)
	locatorParam, _ := params["locator"].(string)
	textParam, _ := params["text"].(string)
	keyParam, _ := params["key"].(string)

	kind, ok := interactKinds[kindParam]
	if !ok {
		return nil, airlockerr.Newf(airlockerr.InvalidInput, "unknown interaction kind %q", kindParam)
	}

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

	action := driver.ActionDescriptor{Kind: kind, Text: textParam, Key: keyParam}

	switch {
	case refParam != "":
		epoch, _ := params["epoch"].(float64)
		rm, ok := t.Sessions.GetRefMap(session.ID(sessionID), window.WindowID)
		if !ok {
			return nil, airlockerr.New(airlockerr.RefNotFound, "no ref map for window; take a snapshot first")
		}
		desc, err := rm.ResolveRefChecked(refParam, int64(epoch))
		if err != nil {
			if airlockerr.CodeOf(err) == airlockerr.RefStale {
				staleNodes, currentNodes := rm.StaleNodes()
				if ae, ok := err.(*airlockerr.Error); ok {
					err = ae.WithDetail("suggestions", RefStaleDiffSuggestion(staleNodes, currentNodes))
				}
			}
			return nil, err
		}
		locator, err := refmap.ToLocator(desc)
		if err != nil {
			return nil, err
		}
		action.Ref = refParam
		action.Locator = locator
	case locatorParam != "":
		action.Locator = locatorParam
	default:
		return nil, airlockerr.New(airlockerr.InvalidInput, "one of ref or locator is required")
	}

	if err := t.Driver.PerformAction(ctx, managed.DriverSession, window.WindowID, action); err != nil {
		return nil, airlockerr.Wrap(err, airlockerr.InternalError, "perform action failed")
	}
	t.Sessions.Touch(session.ID(sessionID))

	return &tool.Output{
		Data: map[string]any{"windowId": string(window.WindowID)},
		Meta: map[string]any{"diagnostics": map[string]any{"windowSelection": strategy}},
	}, nil
}
