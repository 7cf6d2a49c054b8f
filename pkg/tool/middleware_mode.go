package tool

import "github.com/airlockhq/airlock/pkg/airlockerr"

// ModeGate rejects a tool disabled by policy or not permitted under the
// context's safety mode (SPEC_FULL.md §4.5 steps 2-3).
func ModeGate() Middleware {
	return func(next Executor) Executor {
		return func(ec *ExecutionContext) (*Output, error) {
			if ec.Ctx.Policy != nil && ec.Ctx.Policy.IsToolDisabled(ec.ToolName) {
				return nil, airlockerr.Newf(airlockerr.PolicyViolation, "tool %q is disabled by policy", ec.ToolName)
			}
			if !allowsMode(ec.Tool.AllowedModes(), ec.Ctx.Mode) {
				return nil, airlockerr.Newf(airlockerr.PolicyViolation, "tool %q is not permitted in %s mode", ec.ToolName, ec.Ctx.Mode)
			}
			return next(ec)
		}
	}
}
