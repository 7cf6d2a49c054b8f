package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/airlockhq/airlock/pkg/airlockerr"
)

// Timeout applies a per-tool or default deadline to ec.GoContext before
// invoking the handler, adapted from the teacher's Timeout middleware.
// The handler observes the deadline through ec.GoContext; it is
// responsible for returning once that context is done.
func Timeout(defaultTimeout time.Duration, perTool map[string]time.Duration) Middleware {
	return func(next Executor) Executor {
		return func(ec *ExecutionContext) (*Output, error) {
			timeout := defaultTimeout
			if d, ok := perTool[ec.ToolName]; ok {
				timeout = d
			}
			if timeout <= 0 {
				return next(ec)
			}

			base := ec.GoContext
			if base == nil {
				base = context.Background()
			}
			ctx, cancel := context.WithTimeout(base, timeout)
			defer cancel()

			original := ec.GoContext
			ec.GoContext = ctx
			defer func() { ec.GoContext = original }()

			out, err := next(ec)
			if err == nil && ctx.Err() != nil {
				return nil, airlockerr.Wrap(ctx.Err(), airlockerr.InternalError,
					fmt.Sprintf("tool %q timed out after %s", ec.ToolName, timeout)).WithRetriable(true)
			}
			return out, err
		}
	}
}

// WithContext returns a child ExecutionContext's execution deadline
// applied to base, for handlers that need direct access to a bounded
// context.Context rather than going through the middleware chain.
func WithContext(base context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, timeout)
}
