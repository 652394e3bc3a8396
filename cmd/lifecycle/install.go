// cmd/lifecycle/install.go

package lifecycle

import (
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_cli"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_io"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/telegraf"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// InstallCmd downloads, installs and configures Telegraf.
var InstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install and configure Telegraf on this host",
	Long: `Download the Telegraf release for this distribution, install it with the
native package manager, and write a validated /etc/telegraf/telegraf.conf.

Global tag values CTX_DEPLOYMENT_ID, CTX_TENANT_NAME and CTX_HOST_PRIVATE_IP
are replaced with the deployment context.

Examples:
  telegraf-plugin install --tenant-name acme \
    --config-inputs '{"interval": "10s", "global_tags": {"tenant": "CTX_TENANT_NAME"}}'
  telegraf-plugin install --config-inputs @inputs.yaml --config-file templates/telegraf.conf
  telegraf-plugin install --download-url https://mirror.example.com/telegraf_1.4.0-1_amd64.deb`,
	Args: cobra.NoArgs,
	RunE: plugin_cli.Wrap(runInstall),
}

func init() {
	plugin_cli.AddStringFlag(InstallCmd.Flags(), plugin_cli.FlagConfigInputs, "", "Template variables as YAML/JSON, or @file")
	plugin_cli.AddStringFlag(InstallCmd.Flags(), plugin_cli.FlagDownloadURL, "", "Package URL instead of the computed release URL")
	plugin_cli.AddStringFlag(InstallCmd.Flags(), plugin_cli.FlagConfigFile, "", "Config template resource instead of the bundled default")
}

func runInstall(rc *plugin_io.RuntimeContext, cmd *cobra.Command, _ []string) error {
	logger := otelzap.Ctx(rc.Ctx)

	inputs, err := plugin_cli.ParseConfigInputs(plugin_cli.GetStringOrEmpty(cmd, plugin_cli.FlagConfigInputs))
	if err != nil {
		return err
	}

	mgr, err := plugin_cli.NewManager(rc, cmd)
	if err != nil {
		return err
	}

	if err := mgr.Install(rc, telegraf.InstallRequest{
		ConfigInputs: inputs,
		DownloadURL:  plugin_cli.GetStringOrEmpty(cmd, plugin_cli.FlagDownloadURL),
		ConfigFile:   plugin_cli.GetStringOrEmpty(cmd, plugin_cli.FlagConfigFile),
	}); err != nil {
		return err
	}

	logger.Info("Telegraf installed", zap.String("config_path", mgr.Config.ConfigPath))
	return nil
}
