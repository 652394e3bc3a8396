// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/shell"
)

// Package execute runs argv commands synchronously with structured logging.
// Commands are never passed through a shell.

// Options describes one command invocation.
type Options struct {
	Command string
	Args    []string
	// Sudo prefixes the runner's privilege command (sudo by default).
	Sudo    bool
	Dir     string
	Timeout time.Duration
	DryRun  bool
	// AllowFailure marks a non-zero exit as an answer rather than a fault.
	// A strict runner returns the error for such calls instead of exiting.
	AllowFailure bool
	Logger       *zap.Logger
}

// Result is what a finished command produced.
type Result struct {
	Command  []string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	// DryRun is set when the command was logged but not executed.
	DryRun bool
}

// CommandError is returned for any command that did not exit 0.
type CommandError struct {
	Result *Result
	Err    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed with exit code %d: %s",
		strings.Join(e.Result.Command, " "), e.Result.ExitCode,
		plugin_err.ExtractSummary(e.Result.Stderr+"\n"+e.Result.Stdout, 2))
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Executor is implemented by Runner and by test fakes.
type Executor interface {
	Run(ctx context.Context, opts Options) (*Result, error)
}

// Runner executes commands. The zero value runs without a privilege
// prefix, without a default timeout, and returns failures to the caller.
type Runner struct {
	// Privilege is prepended to argv when Options.Sudo is set.
	Privilege []string
	// Timeout applies when Options.Timeout is zero. Zero means no timeout.
	Timeout time.Duration
	DryRun  bool
	// Strict terminates the process with exit code 1 on any failure
	// instead of returning the error.
	Strict bool
	Logger *zap.Logger

	exit func(int)
}

// RunnerConfig is the subset of plugin settings the runner needs.
type RunnerConfig struct {
	PrivilegeCommand string
	Timeout          time.Duration
	DryRun           bool
	Strict           bool
	Logger           *zap.Logger
}

// NewRunner builds a Runner, splitting the privilege command shell-style.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	privilege, err := ParseCommand(cfg.PrivilegeCommand)
	if err != nil {
		return nil, fmt.Errorf("invalid privilege command %q: %w", cfg.PrivilegeCommand, err)
	}
	return &Runner{
		Privilege: privilege,
		Timeout:   cfg.Timeout,
		DryRun:    cfg.DryRun,
		Strict:    cfg.Strict,
		Logger:    cfg.Logger,
	}, nil
}

// ParseCommand splits a shell-style command string into argv tokens.
// Quotes are honoured; environment variables are expanded.
func ParseCommand(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return shell.Fields(s, nil)
}

// Argv returns the full argv that opts would execute with this runner.
func (r *Runner) Argv(opts Options) []string {
	argv := make([]string, 0, len(r.Privilege)+1+len(opts.Args))
	if opts.Sudo {
		argv = append(argv, r.Privilege...)
	}
	argv = append(argv, opts.Command)
	return append(argv, opts.Args...)
}

// Run executes a command and waits for it. A non-zero exit returns a
// *CommandError carrying the captured streams, unless the runner is strict
// and the call did not set AllowFailure.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	argv := r.Argv(opts)
	result := &Result{Command: argv}

	ctx, span := telemetry.Start(ctx, "execute.Run",
		attribute.String("command", opts.Command),
		attribute.String("args", telemetry.TruncateArgs(opts.Args)),
		attribute.Bool("sudo", opts.Sudo),
	)
	defer span.End()

	if opts.DryRun || r.DryRun {
		logger.Info("Dry run mode - command not executed", zap.Strings("argv", argv))
		result.DryRun = true
		return result, nil
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = r.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger.Debug("Running command", zap.Strings("argv", argv))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result.Duration = time.Since(start)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	result.ExitCode = exitCode(err)

	if err == nil {
		logger.Debug("Command succeeded",
			zap.Strings("argv", argv),
			zap.Duration("duration", result.Duration))
		return result, nil
	}

	span.RecordError(err)
	span.SetAttributes(attribute.Int("exit_code", result.ExitCode))
	log := logger.Error
	if opts.AllowFailure {
		log = logger.Debug
	}
	log("Failed running command",
		zap.String("command", strings.Join(argv, " ")),
		zap.Int("exit_code", result.ExitCode),
		zap.String("stderr", result.Stderr),
		zap.Error(err))

	if r.Strict && !opts.AllowFailure {
		r.terminate()
	}
	return result, &CommandError{Result: result, Err: err}
}

func (r *Runner) terminate() {
	if r.exit != nil {
		r.exit(1)
		return
	}
	os.Exit(1)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
