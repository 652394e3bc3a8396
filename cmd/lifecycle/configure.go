// cmd/lifecycle/configure.go

package lifecycle

import (
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_cli"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_io"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/telegraf"
	"github.com/spf13/cobra"
)

// ConfigureCmd re-renders the config without reinstalling.
var ConfigureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Render, validate and install telegraf.conf",
	Long: `Render the config template with the given inputs to a staging file, check it
with 'telegraf -test', and move it over the live config only when it is valid.`,
	Args: cobra.NoArgs,
	RunE: plugin_cli.Wrap(func(rc *plugin_io.RuntimeContext, cmd *cobra.Command, _ []string) error {
		inputs, err := plugin_cli.ParseConfigInputs(plugin_cli.GetStringOrEmpty(cmd, plugin_cli.FlagConfigInputs))
		if err != nil {
			return err
		}
		mgr, err := plugin_cli.NewManager(rc, cmd)
		if err != nil {
			return err
		}
		if err := mgr.Resolver.RequireLinux(); err != nil {
			return err
		}
		return mgr.Configure(rc, plugin_cli.GetStringOrEmpty(cmd, plugin_cli.FlagConfigFile), telegraf.PrepareInputs(inputs, rc.Deployment))
	}),
}

func init() {
	plugin_cli.AddStringFlag(ConfigureCmd.Flags(), plugin_cli.FlagConfigInputs, "", "Template variables as YAML/JSON, or @file")
	plugin_cli.AddStringFlag(ConfigureCmd.Flags(), plugin_cli.FlagConfigFile, "", "Config template resource instead of the bundled default")
}
