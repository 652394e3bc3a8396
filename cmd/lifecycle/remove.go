// cmd/lifecycle/remove.go

package lifecycle

import (
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_cli"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_io"
	"github.com/spf13/cobra"
)

// RemoveCmd uninstalls the telegraf package.
var RemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the telegraf package",
	Args:  cobra.NoArgs,
	RunE: plugin_cli.Wrap(func(rc *plugin_io.RuntimeContext, cmd *cobra.Command, _ []string) error {
		mgr, err := plugin_cli.NewManager(rc, cmd)
		if err != nil {
			return err
		}
		return mgr.Remove(rc)
	}),
}
