package common

import (
	"github.com/teemow/flowspace/internal/engine"
)

// Account resolves the account name a task should use.
//
// Priority order:
//  1. Explicit "account" parameter in the task input
//  2. The account of the current execution
//  3. "default"
func Account(exec *engine.Execution, in engine.Input) string {
	if v := String(in, "account"); v != "" {
		return v
	}
	if exec != nil && exec.Account != "" {
		return exec.Account
	}
	return "default"
}
