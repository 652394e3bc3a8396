// pkg/plugin_err/classification.go
//
// Error classification with exit codes the orchestrator can act on.

package plugin_err

import (
	"errors"
	"fmt"
	"strings"

	cerr "github.com/cockroachdb/errors"
)

// ErrorCategory classifies errors for appropriate handling
type ErrorCategory int

const (
	// CategorySystem - OS/filesystem issues (exit 1)
	CategorySystem ErrorCategory = iota
	// CategoryValidation - Input validation failures (exit 2)
	CategoryValidation
	// CategoryNetwork - download failures (exit 1)
	CategoryNetwork
	// CategoryCommand - a subprocess exited non-zero (exit 1)
	CategoryCommand
	// CategoryInternal - bugs in the plugin itself (exit 4)
	CategoryInternal
)

const (
	ExitSuccess        = 0
	ExitRecoverable    = 1
	ExitUserError      = 2
	ExitNonRecoverable = 3
	ExitInternal       = 4
)

// ClassifiedError wraps an error with category and remediation info
type ClassifiedError struct {
	Category    ErrorCategory
	Message     string
	Cause       error
	Remediation []string
}

// Error implements the error interface
func (e *ClassifiedError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Message)

	if e.Cause != nil && e.Cause.Error() != e.Message {
		sb.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Remediation) > 0 {
		sb.WriteString("\n\nHow to fix:")
		for i, step := range e.Remediation {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	return sb.String()
}

// Unwrap returns the underlying error
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error category
func (e *ClassifiedError) ExitCode() int {
	switch e.Category {
	case CategoryValidation:
		return ExitUserError
	case CategoryInternal:
		return ExitInternal
	default:
		return ExitRecoverable
	}
}

// GetExitCode extracts exit code from any error.
// Non-recoverable wins over user errors, which win over classified errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if IsNonRecoverable(err) {
		return ExitNonRecoverable
	}
	if IsExpectedUserError(err) {
		return ExitUserError
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.ExitCode()
	}

	if cerr.IsAssertionFailure(err) {
		return ExitInternal
	}
	return ExitRecoverable
}

// NewValidationError creates an error for input validation failures
func NewValidationError(message string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryValidation,
		Message:     message,
		Remediation: remediation,
	}
}

// NewFilesystemError creates an error for filesystem issues
func NewFilesystemError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategorySystem,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewNetworkError creates an error for network issues
func NewNetworkError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryNetwork,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewCommandError creates an error for a failed subprocess
func NewCommandError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryCommand,
		Message:  message,
		Cause:    cause,
	}
}

// Classify returns a short label used in logs and telemetry.
func Classify(err error) string {
	switch GetExitCode(err) {
	case ExitSuccess:
		return ""
	case ExitNonRecoverable:
		return "non_recoverable"
	case ExitUserError:
		return "user"
	case ExitInternal:
		return "internal"
	default:
		return "system"
	}
}
