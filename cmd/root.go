/* cmd/root.go */

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/cmd/lifecycle"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_cli"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/shared"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd is the base command for telegraf-plugin.
var RootCmd = &cobra.Command{
	Use:   "telegraf-plugin",
	Short: "Install, configure, start, stop and remove Telegraf",
	Long: `telegraf-plugin is invoked by a lifecycle orchestrator on a managed Linux host.

Exit codes:
  0  success
  1  recoverable failure (a command or download failed)
  2  invalid inputs or settings
  3  non-recoverable (unsupported OS or distribution, installation marker state)
  4  internal error`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// VersionCmd prints the build version.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the plugin version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (built %s)\n", shared.PluginID, shared.Version, shared.BuildTime)
	},
}

// RegisterCommands adds all subcommands to the root command.
func RegisterCommands() {
	plugin_cli.AddSettingsFlags(RootCmd.PersistentFlags())

	for _, subCmd := range []*cobra.Command{
		lifecycle.InstallCmd,
		lifecycle.StartCmd,
		lifecycle.StopCmd,
		lifecycle.RemoveCmd,
		lifecycle.ConfigureCmd,
		lifecycle.StatusCmd,
		VersionCmd,
	} {
		RootCmd.AddCommand(subCmd)
	}
}

// Run executes args against the root command and returns the process exit code.
func Run(ctx context.Context, args []string) int {
	RootCmd.SetArgs(args)
	err := RootCmd.ExecuteContext(ctx)
	if err == nil {
		return plugin_err.ExitSuccess
	}

	code := plugin_err.GetExitCode(err)
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		logger.L().Warn("Interrupted", zap.Error(err))
	case plugin_err.IsExpectedUserError(err):
		logger.L().Warn("CLI completed with user error", zap.Error(err))
	default:
		logger.L().Error("CLI execution error", zap.Error(err), zap.Int("exit_code", code))
	}
	fmt.Fprintf(RootCmd.ErrOrStderr(), "Error: %v\n", err)
	return code
}

// Execute initializes and runs the root command and returns the exit code.
// SIGINT and SIGTERM cancel the running command's context.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	RegisterCommands()
	return Run(ctx, os.Args[1:])
}
