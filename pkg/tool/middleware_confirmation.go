package tool

import (
	"github.com/airlockhq/airlock/pkg/airlockerr"
	"github.com/airlockhq/airlock/pkg/confirmation"
)

// ConfirmationGate synthesizes and stores a pending confirmation for a
// guarded tool invoked without one, returning CONFIRMATION_REQUIRED
// (SPEC_FULL.md §4.2, §4.5 step 4). The confirm tool itself is always
// exempt (policy.ShouldRequireConfirmation already encodes that).
func ConfirmationGate() Middleware {
	return func(next Executor) Executor {
		return func(ec *ExecutionContext) (*Output, error) {
			if ec.Ctx.Policy == nil || !ec.Ctx.Policy.ShouldRequireConfirmation(ec.ToolName) {
				return next(ec)
			}

			if ec.ConfirmationID != "" {
				if pending, ok := ec.Ctx.Confirmations.FindValid(ec.ConfirmationID, ec.ToolName); ok {
					_, _ = ec.Ctx.Confirmations.Consume(pending.ID)
					return next(ec)
				}
			}

			pending := confirmation.NewPending(ec.ToolName, "confirmation required to run "+ec.ToolName, ec.Params)
			ec.Ctx.Confirmations.Add(pending)
			return nil, airlockerr.New(airlockerr.ConfirmationRequired, "this action requires confirmation").
				WithDetail("confirmationId", pending.ID).
				WithDetail("params", ec.Params)
		}
	}
}
