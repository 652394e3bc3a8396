// pkg/shared/constants.go

package shared

const (
	PluginID   = "telegraf-plugin"
	EnvPrefix  = "TELEGRAF_PLUGIN"
	PluginLogs = "/var/log/telegraf-plugin/plugin.log"
	// #nosec G101 - This is a log file path, not a hardcoded credential
	PluginLogsPWD = "./telegraf-plugin.log"
)

// Telegraf layout on a managed node.
const (
	ServiceName       = "telegraf"
	PackageName       = "telegraf"
	TelegrafBinary    = "telegraf"
	LiveConfigPath    = "/etc/telegraf/telegraf.conf"
	SetupMarkerPath   = "/opt/telegraf"
	StagingConfigName = "telegraf.conf"
	SystemctlPath     = "/usr/bin/systemctl"
	OSReleasePath     = "/etc/os-release"
	OSReleaseFallback = "/usr/lib/os-release"
	DefaultConfigFile = "/etc/telegraf-plugin/config.yaml"
)

// Release artifacts.
const (
	ReleaseBaseURL      = "https://dl.influxdata.com/telegraf/releases/"
	DefaultAgentVersion = "1.4.0"
	PackageRevision     = "1"
)

// Placeholders accepted as global_tags values.
const (
	PlaceholderDeploymentID = "CTX_DEPLOYMENT_ID"
	PlaceholderTenantName   = "CTX_TENANT_NAME"
	PlaceholderHostIP       = "CTX_HOST_PRIVATE_IP"
	GlobalTagsKey           = "global_tags"
)

const (
	// Permission modes (in octal)
	DirPermStandard        = 0755
	FilePermOwnerRWX       = 0700
	FilePermStandard       = 0644
	FilePermOwnerReadWrite = 0600
)
