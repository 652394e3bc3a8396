// pkg/testutil/mock_command.go

package testutil

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/execute"
)

// MockCommand is an execute.Executor that records argv and returns
// canned results keyed by the full command line.
type MockCommand struct {
	mu        sync.Mutex
	Privilege []string
	Commands  map[string]MockCommandResult
	// Prefixes match any command line starting with the key when no exact entry exists.
	Prefixes map[string]MockCommandResult
	Calls    [][]string
	// Hooks run before the canned result is returned, keyed like Commands.
	Hooks map[string]func(argv []string)
}

type MockCommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// NewMockCommand creates a new command mocker with a "sudo" privilege prefix.
func NewMockCommand() *MockCommand {
	return &MockCommand{
		Privilege: []string{"sudo"},
		Commands:  make(map[string]MockCommandResult),
		Prefixes:  make(map[string]MockCommandResult),
		Hooks:     make(map[string]func([]string)),
	}
}

// SetCommand sets the expected result for a command line such as "sudo dpkg -i /tmp/x.deb".
func (mc *MockCommand) SetCommand(command string, result MockCommandResult) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.Commands[command] = result
}

// SetCommandPrefix sets the result for every command line starting with prefix.
func (mc *MockCommand) SetCommandPrefix(prefix string, result MockCommandResult) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.Prefixes[prefix] = result
}

// OnCommand registers a side effect for a command line.
func (mc *MockCommand) OnCommand(command string, hook func(argv []string)) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.Hooks[command] = hook
}

// Run implements execute.Executor. Unknown commands succeed with empty output.
func (mc *MockCommand) Run(_ context.Context, opts execute.Options) (*execute.Result, error) {
	var argv []string
	if opts.Sudo {
		argv = append(argv, mc.Privilege...)
	}
	argv = append(argv, opts.Command)
	argv = append(argv, opts.Args...)
	line := strings.Join(argv, " ")

	mc.mu.Lock()
	mc.Calls = append(mc.Calls, argv)
	canned, ok := mc.Commands[line]
	if !ok {
		for prefix, res := range mc.Prefixes {
			if strings.HasPrefix(line, prefix) {
				canned = res
				break
			}
		}
	}
	hook := mc.Hooks[line]
	mc.mu.Unlock()

	if hook != nil {
		hook(argv)
	}

	res := &execute.Result{
		Command:  argv,
		Stdout:   canned.Stdout,
		Stderr:   canned.Stderr,
		ExitCode: canned.ExitCode,
	}
	if canned.ExitCode != 0 {
		return res, &execute.CommandError{Result: res, Err: &exitStatus{code: canned.ExitCode}}
	}
	return res, nil
}

// CommandLines returns every recorded call joined with spaces.
func (mc *MockCommand) CommandLines() []string {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	lines := make([]string, 0, len(mc.Calls))
	for _, c := range mc.Calls {
		lines = append(lines, strings.Join(c, " "))
	}
	return lines
}

type exitStatus struct{ code int }

func (e *exitStatus) Error() string {
	return "exit status " + strconv.Itoa(e.code)
}
