// cmd/lifecycle/service.go

package lifecycle

import (
	"fmt"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_cli"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_io"
	"github.com/spf13/cobra"
)

// StartCmd restarts and enables the telegraf service.
var StartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the telegraf service",
	Args:  cobra.NoArgs,
	RunE: plugin_cli.Wrap(func(rc *plugin_io.RuntimeContext, cmd *cobra.Command, _ []string) error {
		mgr, err := plugin_cli.NewManager(rc, cmd)
		if err != nil {
			return err
		}
		out, err := mgr.Start(rc)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}),
}

// StopCmd stops the telegraf service.
var StopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the telegraf service",
	Args:  cobra.NoArgs,
	RunE: plugin_cli.Wrap(func(rc *plugin_io.RuntimeContext, cmd *cobra.Command, _ []string) error {
		mgr, err := plugin_cli.NewManager(rc, cmd)
		if err != nil {
			return err
		}
		out, err := mgr.Stop(rc)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}),
}

// StatusCmd prints active, inactive, unknown or not loaded.
var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the telegraf service is running",
	Args:  cobra.NoArgs,
	RunE: plugin_cli.Wrap(func(rc *plugin_io.RuntimeContext, cmd *cobra.Command, _ []string) error {
		mgr, err := plugin_cli.NewManager(rc, cmd)
		if err != nil {
			return err
		}
		state, err := mgr.Status(rc)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), state)
		return nil
	}),
}
