package cli

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// errNoOwner is returned by commands that act for a user when none is set.
var errNoOwner = errors.New("no owner: pass --owner or set CHATKEEP_OWNER")

// exitError carries the exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

// userError marks err as caused by the invocation.
func userError(err error) error {
	return &exitError{code: exitUserError, err: err}
}

// sysError marks err as an environment or storage failure, wrapped with
// what was being done.
func sysError(what string, err error) error {
	return &exitError{code: exitSysError, err: fmt.Errorf("%s: %w", what, err)}
}

// managerError classifies an error from the conversation manager.
func managerError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrOwnershipMismatch),
		types.IsValidationError(err):
		return userError(err)
	default:
		return sysError("storage", err)
	}
}

// exitCode maps an error to a process exit code. Errors that carry no code,
// such as cobra's argument and flag errors, are user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
