package tool

import (
	"strings"

	"github.com/airlockhq/airlock/pkg/airlockerr"
)

// Validation rejects input that fails the tool's declared strict schema
// (SPEC_FULL.md §4.5 step 1), adapted from the teacher's Validation
// middleware (rule table) to a per-tool schema instead of ad hoc rules.
func Validation() Middleware {
	return func(next Executor) Executor {
		return func(ec *ExecutionContext) (*Output, error) {
			issues := ec.Tool.InputSchema().Validate(ec.Params)
			if len(issues) == 0 {
				return next(ec)
			}
			reasons := make([]string, len(issues))
			for i, issue := range issues {
				reasons[i] = issue.String()
			}
			return nil, airlockerr.New(airlockerr.InvalidInput, strings.Join(reasons, "; ")).
				WithDetail("issues", issues)
		}
	}
}
