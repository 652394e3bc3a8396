// pkg/execute/helpers.go

package execute

import (
	"context"
	"errors"
	"strings"
)

// Output runs a command and returns its trimmed stdout.
func Output(ctx context.Context, e Executor, opts Options) (string, error) {
	res, err := e.Run(ctx, opts)
	if res == nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), err
}

// ExitCodeOf returns the exit code carried by a *CommandError in err,
// 0 for nil, and -1 for anything else.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Result.ExitCode
	}
	return -1
}
