// pkg/plugin_err/types.go

package plugin_err

import "errors"

// ErrUnsupportedPlatform is the cause of every distro/OS rejection.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// UserError marks an error as expected and fixable by the operator
// (bad inputs, a template that does not render, a config telegraf rejects).
type UserError struct {
	cause error
}

func (e *UserError) Error() string {
	return e.cause.Error()
}

func (e *UserError) Unwrap() error {
	return e.cause
}

// NonRecoverableError tells the orchestrator that retrying the operation
// on this node cannot succeed.
type NonRecoverableError struct {
	cause error
}

func (e *NonRecoverableError) Error() string {
	return e.cause.Error()
}

func (e *NonRecoverableError) Unwrap() error {
	return e.cause
}
