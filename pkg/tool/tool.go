// Package tool implements the shared tool dispatch contract (SPEC_FULL.md
// §4.5): input validation, mode gating, confirmation gating, the error
// taxonomy, and the diagnostic envelope every tool invocation passes
// through. The middleware chain shape (Executor/Middleware/Chain) is
// grounded on the teacher's pkg/tool/middleware*.go family; this
// package reuses it for validation/mode-gating/confirmation-gating/
// timeout/telemetry instead of the teacher's retry/approval-for-writes
// concerns.
package tool

import (
	"context"
	"time"

	"github.com/airlockhq/airlock/pkg/confirmation"
	"github.com/airlockhq/airlock/pkg/driver"
	"github.com/airlockhq/airlock/pkg/eventlog"
	"github.com/airlockhq/airlock/pkg/logging"
	"github.com/airlockhq/airlock/pkg/policy"
	"github.com/airlockhq/airlock/pkg/session"
)

// Limits bounds the size of data a tool may return.
type Limits struct {
	MaxNodes             int
	MaxTextCharsPerNode  int
}

// Output is the data a tool handler produces, before it is wrapped in
// the dispatch envelope.
type Output struct {
	Data map[string]any
	Meta map[string]any
}

// DispatchContext is the fixed aggregate of recognized dependencies a
// tool handler receives, mirroring spec.md §4.5's context record.
type DispatchContext struct {
	Mode             policy.Mode
	Policy           *policy.ResolvedPolicy
	Runtime          driver.Runtime
	Capability       driver.Capability
	Sessions         *session.Manager
	Confirmations    *confirmation.Store
	EventLog         *eventlog.Log
	Limits           Limits
	Metadata         map[string]any
	StartedAt        time.Time
	Logger           *logging.Logger
	GetEnabledTools  func() []string
}

// Handler is a tool's business logic.
type Handler func(ctx context.Context, params map[string]any, dctx *DispatchContext) (*Output, error)

// Tool is the shape every tool dispatched through this runtime implements.
type Tool interface {
	Name() string
	Title() string
	Description() string
	InputSchema() Schema
	OutputSchema() Schema
	AllowedModes() []policy.Mode
	ReadOnlyHint() bool
	Handle(ctx context.Context, params map[string]any, dctx *DispatchContext) (*Output, error)
}

// Registry holds every registered Tool by name.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry returns an empty tool Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds t to the registry.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// Get returns the tool named name, if registered.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns every registered tool name in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// EnabledNames returns registered tool names not disabled by p.
func (r *Registry) EnabledNames(p *policy.ResolvedPolicy) []string {
	var out []string
	for _, name := range r.order {
		if p == nil || !p.IsToolDisabled(name) {
			out = append(out, name)
		}
	}
	return out
}

func allowsMode(allowed []policy.Mode, mode policy.Mode) bool {
	for _, m := range allowed {
		if m == mode {
			return true
		}
	}
	return false
}
