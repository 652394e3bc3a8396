// pkg/service/service.go

package service

import (
	"errors"
	"os"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_io"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/shared"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Controller starts and stops one service through systemd when the
// systemctl binary exists, and through the legacy `service` wrapper otherwise.
type Controller struct {
	Executor      execute.Executor
	SystemctlPath string
	Name          string
}

// NewController returns a Controller for the telegraf unit.
func NewController(executor execute.Executor, systemctlPath string) *Controller {
	if systemctlPath == "" {
		systemctlPath = shared.SystemctlPath
	}
	return &Controller{Executor: executor, SystemctlPath: systemctlPath, Name: shared.ServiceName}
}

// HasSystemd reports whether the configured systemctl binary exists.
func (c *Controller) HasSystemd() bool {
	_, err := os.Stat(c.SystemctlPath)
	return err == nil
}

func (c *Controller) systemctl(cmd SystemctlCommand, unit bool) execute.Options {
	args := []string{string(cmd)}
	if unit {
		args = append(args, c.Name)
	}
	return execute.Options{Command: c.SystemctlPath, Args: args, Sudo: true}
}

func (c *Controller) legacy(cmd SystemctlCommand) execute.Options {
	return execute.Options{Command: "service", Args: []string{c.Name, string(cmd)}, Sudo: true}
}

// Start restarts the service and, under systemd, enables it and reloads
// unit files. It returns the restart command's stdout.
func (c *Controller) Start(rc *plugin_io.RuntimeContext) (string, error) {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Info("Starting telegraf service...", zap.Bool("systemd", c.HasSystemd()))

	// enable and daemon-reload have no `service` equivalent, so the legacy
	// path only restarts.
	steps := []execute.Options{c.legacy(CmdRestart)}
	if c.HasSystemd() {
		steps = []execute.Options{
			c.systemctl(CmdRestart, true),
			c.systemctl(CmdEnable, true),
			c.systemctl(CmdDaemonReload, false),
		}
	}

	var output string
	for i, step := range steps {
		res, err := c.Executor.Run(rc.Ctx, step)
		if err != nil {
			c.logFailure(rc, step, err)
			return "", plugin_err.NewCommandError("failed to start "+c.Name, err)
		}
		if i == 0 {
			output = res.Stdout
		}
	}

	logger.Info("Telegraf service is up!")
	return output, nil
}

// Stop stops the service and returns the stop command's stdout.
func (c *Controller) Stop(rc *plugin_io.RuntimeContext) (string, error) {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Info("Stopping telegraf service...", zap.Bool("systemd", c.HasSystemd()))

	opts := c.legacy(CmdStop)
	if c.HasSystemd() {
		opts = c.systemctl(CmdStop, true)
	}

	res, err := c.Executor.Run(rc.Ctx, opts)
	if err != nil {
		c.logFailure(rc, opts, err)
		return "", plugin_err.NewCommandError("failed to stop "+c.Name, err)
	}

	logger.Info("Telegraf service is stopped")
	return res.Stdout, nil
}

// Status queries the service state. Non-zero exits of the query itself
// are interpreted rather than returned as errors. A dry run reports
// StateUnknown because nothing was queried.
func (c *Controller) Status(rc *plugin_io.RuntimeContext) (State, error) {
	logger := otelzap.Ctx(rc.Ctx)

	opts := c.legacy(CmdStatus)
	if c.HasSystemd() {
		opts = c.systemctl(CmdIsActive, true)
	}
	opts.Sudo = false
	// is-active exits 3 for a stopped unit.
	opts.AllowFailure = true

	res, err := c.Executor.Run(rc.Ctx, opts)
	if err == nil && res != nil && res.DryRun {
		logger.Info("Dry run mode - service state not queried", zap.String("service", c.Name))
		return StateUnknown, nil
	}
	code := 0
	if err != nil {
		var cmdErr *execute.CommandError
		if !errors.As(err, &cmdErr) || cmdErr.Result.ExitCode < 0 {
			return StateUnknown, plugin_err.NewCommandError("failed to query "+c.Name, err)
		}
		code = cmdErr.Result.ExitCode
	} else if res != nil {
		code = res.ExitCode
	}

	state := InterpretIsActive(code)
	logger.Debug("Service status",
		zap.String("service", c.Name),
		zap.String("state", string(state)),
		zap.Int("exit_code", code))
	return state, nil
}

func (c *Controller) logFailure(rc *plugin_io.RuntimeContext, opts execute.Options, err error) {
	var cmdErr *execute.CommandError
	if !errors.As(err, &cmdErr) || len(opts.Args) == 0 {
		return
	}
	cmd := SystemctlCommand(opts.Args[0])
	if opts.Command == "service" && len(opts.Args) > 1 {
		cmd = SystemctlCommand(opts.Args[1])
	}
	otelzap.Ctx(rc.Ctx).Warn("Service command failed",
		zap.String("service", c.Name),
		zap.String("command", string(cmd)),
		zap.String("outcome", InterpretSystemctlExitCode(cmd, cmdErr.Result.ExitCode)))
}
