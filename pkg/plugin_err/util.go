// pkg/plugin_err/util.go

package plugin_err

import (
	"errors"
	"fmt"
	"strings"
)

// ExtractSummary extracts a concise error summary from full output.
func ExtractSummary(output string, maxCandidates int) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "No output provided."
	}

	lines := strings.Split(trimmed, "\n")
	var candidates []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lowerLine := strings.ToLower(line)
		if strings.Contains(lowerLine, "error") ||
			strings.Contains(lowerLine, "failed") ||
			strings.Contains(lowerLine, "cannot") ||
			strings.Contains(lowerLine, "fatal") ||
			strings.Contains(lowerLine, "timeout") {
			candidates = append(candidates, line)
		}
	}

	if len(candidates) > 0 {
		if len(candidates) > maxCandidates {
			candidates = candidates[:maxCandidates]
		}
		return strings.Join(candidates, " - ")
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}

	return "Unknown error."
}

// NewExpectedError wraps an error for softer UX handling.
func NewExpectedError(err error) error {
	if err == nil {
		return nil
	}
	return &UserError{cause: err}
}

// IsExpectedUserError checks if the error is marked as expected.
func IsExpectedUserError(err error) bool {
	var e *UserError
	return errors.As(err, &e)
}

// NewNonRecoverable builds a NonRecoverableError from a formatted message.
func NewNonRecoverable(format string, args ...any) error {
	return &NonRecoverableError{cause: fmt.Errorf(format, args...)}
}

// WrapNonRecoverable marks an existing error as non-recoverable.
func WrapNonRecoverable(err error) error {
	if err == nil {
		return nil
	}
	return &NonRecoverableError{cause: err}
}

// IsNonRecoverable reports whether any error in the chain is non-recoverable.
func IsNonRecoverable(err error) bool {
	var e *NonRecoverableError
	return errors.As(err, &e)
}
