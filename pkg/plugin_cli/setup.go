// pkg/plugin_cli/setup.go

package plugin_cli

import (
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/config"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_io"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/telegraf"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Flags that select sources or carry per-command inputs rather than settings.
const (
	FlagConfig       = "config"
	FlagEnvFile      = "env-file"
	FlagConfigInputs = "config-inputs"
	FlagDownloadURL  = "download-url"
	FlagConfigFile   = "config-file"
)

var nonSettingFlags = []string{FlagConfig, FlagEnvFile, FlagConfigInputs, FlagDownloadURL, FlagConfigFile, "help"}

// AddSettingsFlags registers one flag per settings key. Flag defaults are
// zero values so that config.SetDefaults stays the single source of defaults.
func AddSettingsFlags(flags *pflag.FlagSet) {
	AddStringFlag(flags, FlagConfig, shared.DefaultConfigFile, "YAML settings file")
	AddStringFlag(flags, FlagEnvFile, ".env", "dotenv file with TELEGRAF_PLUGIN_* variables")

	AddStringFlag(flags, "deployment-id", "", "Orchestrator deployment id (CTX_DEPLOYMENT_ID)")
	AddStringFlag(flags, "tenant-name", "", "Orchestrator tenant name (CTX_TENANT_NAME)")
	AddStringFlag(flags, "host-ip", "", "Private IP of this host (CTX_HOST_PRIVATE_IP)")

	AddStringFlag(flags, "config-path", "", "Live telegraf config path (default "+shared.LiveConfigPath+")")
	AddStringFlag(flags, "setup-path", "", "Installation marker path (default "+shared.SetupMarkerPath+")")
	AddStringFlag(flags, "systemctl-path", "", "systemctl binary used to detect systemd (default "+shared.SystemctlPath+")")
	AddStringFlag(flags, "telegraf-binary", "", "telegraf binary used to validate configs")
	AddStringFlag(flags, "temp-dir", "", "Directory for downloads and the staged config")
	AddStringFlag(flags, "release-base-url", "", "Release download base URL (default "+shared.ReleaseBaseURL+")")
	AddStringFlag(flags, "agent-version", "", "Telegraf version to install (default "+shared.DefaultAgentVersion+")")
	AddStringFlag(flags, "os-release-path", "", "os-release file used for distro detection")
	AddStringFlag(flags, "privilege-command", "", "Privilege prefix for package and service commands (default sudo)")
	AddStringFlag(flags, "resource-dir", "", "Directory that relative --config-file resources resolve against")
	AddIntFlag(flags, "download-retries", 0, "Retries for failed downloads (default 2)")
	AddDurationFlag(flags, "download-timeout", 0, "Per-request download timeout (default 5m)")
	AddDurationFlag(flags, "command-timeout", 0, "Per-command timeout, 0 runs to completion")
	AddBoolFlag(flags, "strict-exit", false, "Terminate with exit code 1 on the first failed command")
	AddBoolFlag(flags, "dry-run", false, "Log commands instead of running them")
}

// LoadConfig resolves settings for cmd and records the deployment identity on rc.
func LoadConfig(rc *plugin_io.RuntimeContext, cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	if err := BindFlagsToViper(cmd, v, nonSettingFlags...); err != nil {
		return nil, plugin_err.NewValidationError("failed to bind flags: " + err.Error())
	}

	file := GetStringOrEmpty(cmd, FlagConfig)
	cfg, err := config.Load(v, config.LoadOptions{
		ConfigFile: file,
		Explicit:   cmd.Flags().Changed(FlagConfig),
		EnvFile:    GetStringOrEmpty(cmd, FlagEnvFile),
	})
	if err != nil {
		return nil, err
	}

	rc.Deployment = plugin_io.Deployment{
		DeploymentID: cfg.DeploymentID,
		TenantName:   cfg.TenantName,
		HostIP:       cfg.HostIP,
	}
	rc.Log = rc.Log.With(
		zap.String("tenant", cfg.TenantName),
		zap.Bool("dry_run", cfg.DryRun))
	rc.Attributes["deployment_id"] = cfg.DeploymentID

	return cfg, nil
}

// NewManager builds the lifecycle manager for cmd from resolved settings.
func NewManager(rc *plugin_io.RuntimeContext, cmd *cobra.Command) (*telegraf.Manager, error) {
	cfg, err := LoadConfig(rc, cmd)
	if err != nil {
		return nil, err
	}

	runner, err := execute.NewRunner(execute.RunnerConfig{
		PrivilegeCommand: cfg.PrivilegeCommand,
		Timeout:          cfg.CommandTimeout,
		DryRun:           cfg.DryRun,
		Strict:           cfg.StrictExit,
		Logger:           rc.Log,
	})
	if err != nil {
		return nil, plugin_err.NewValidationError(err.Error())
	}

	return telegraf.NewManager(cfg, runner, rc.Log)
}
