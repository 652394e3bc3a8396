// pkg/service/systemctl.go

package service

import "fmt"

// Systemctl exit codes, see systemctl(1).
const (
	ExitSuccess = 0

	// is-active
	ExitInactive  = 3
	ExitUnknown   = 4
	ExitNotLoaded = 5
)

// SystemctlCommand is a systemctl or service subcommand.
type SystemctlCommand string

const (
	CmdIsActive     SystemctlCommand = "is-active"
	CmdStop         SystemctlCommand = "stop"
	CmdRestart      SystemctlCommand = "restart"
	CmdEnable       SystemctlCommand = "enable"
	CmdStatus       SystemctlCommand = "status"
	CmdDaemonReload SystemctlCommand = "daemon-reload"
)

// State is the interpreted result of a status query.
type State string

const (
	StateActive    State = "active"
	StateInactive  State = "inactive"
	StateUnknown   State = "unknown"
	StateNotLoaded State = "not loaded"
)

// InterpretIsActive maps a `systemctl is-active` exit code to a State.
func InterpretIsActive(exitCode int) State {
	switch exitCode {
	case ExitSuccess:
		return StateActive
	case ExitInactive:
		return StateInactive
	case ExitNotLoaded:
		return StateNotLoaded
	default:
		return StateUnknown
	}
}

// InterpretSystemctlExitCode describes an exit code for logs.
func InterpretSystemctlExitCode(cmd SystemctlCommand, exitCode int) string {
	if cmd == CmdIsActive {
		return string(InterpretIsActive(exitCode))
	}
	if exitCode == ExitSuccess {
		return "success"
	}
	return fmt.Sprintf("failed with exit code %d", exitCode)
}
