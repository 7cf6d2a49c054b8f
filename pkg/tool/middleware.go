package tool

import (
	"context"
	"time"
)

// ExecutionContext carries per-invocation request state through the
// middleware chain. Grounded on the teacher's tool.ExecutionContext,
// trimmed to this spec's fields and adding the DispatchContext (Ctx),
// through which the resolved policy is reached.
type ExecutionContext struct {
	GoContext context.Context
	Ctx       *DispatchContext
	ToolName  string
	Tool      Tool
	SessionID string
	Params    map[string]any
	StartedAt time.Time
	Meta      map[string]any

	// ConfirmationID, if present, is the id the caller supplied to
	// satisfy a confirmation gate.
	ConfirmationID string
}

// Executor is the function signature for tool execution at any point in
// the middleware chain.
type Executor func(ec *ExecutionContext) (*Output, error)

// Middleware wraps an Executor with additional behavior.
type Middleware func(next Executor) Executor

// Chain composes middlewares in order; the first middleware given is
// outermost (runs first on the way in, last on the way out).
func Chain(middlewares ...Middleware) Middleware {
	return func(final Executor) Executor {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
