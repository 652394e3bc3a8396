// pkg/config/config.go

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/shared"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Setting keys. Flags bound to viper use the same names with '-' for '_'.
const (
	KeyConfigPath       = "config_path"
	KeySetupPath        = "setup_path"
	KeySystemctlPath    = "systemctl_path"
	KeyTelegrafBinary   = "telegraf_binary"
	KeyTempDir          = "temp_dir"
	KeyReleaseBaseURL   = "release_base_url"
	KeyAgentVersion     = "agent_version"
	KeyOSReleasePath    = "os_release_path"
	KeyPrivilegeCommand = "privilege_command"
	KeyResourceDir      = "resource_dir"
	KeyDownloadRetries  = "download_retries"
	KeyDownloadTimeout  = "download_timeout"
	KeyCommandTimeout   = "command_timeout"
	KeyStrictExit       = "strict_exit"
	KeyDryRun           = "dry_run"

	KeyDeploymentID = "deployment_id"
	KeyTenantName   = "tenant_name"
	KeyHostIP       = "host_ip"
)

// Config holds every tunable path and behaviour of the plugin.
type Config struct {
	ConfigPath       string        `mapstructure:"config_path" validate:"required"`
	SetupPath        string        `mapstructure:"setup_path" validate:"required"`
	SystemctlPath    string        `mapstructure:"systemctl_path" validate:"required"`
	TelegrafBinary   string        `mapstructure:"telegraf_binary" validate:"required"`
	TempDir          string        `mapstructure:"temp_dir"`
	ReleaseBaseURL   string        `mapstructure:"release_base_url" validate:"required,url"`
	AgentVersion     string        `mapstructure:"agent_version" validate:"required"`
	OSReleasePath    string        `mapstructure:"os_release_path" validate:"required"`
	PrivilegeCommand string        `mapstructure:"privilege_command"`
	ResourceDir      string        `mapstructure:"resource_dir"`
	DownloadRetries  int           `mapstructure:"download_retries" validate:"gte=0,lte=10"`
	DownloadTimeout  time.Duration `mapstructure:"download_timeout" validate:"gte=0"`
	CommandTimeout   time.Duration `mapstructure:"command_timeout" validate:"gte=0"`
	StrictExit       bool          `mapstructure:"strict_exit"`
	DryRun           bool          `mapstructure:"dry_run"`

	DeploymentID string `mapstructure:"deployment_id"`
	TenantName   string `mapstructure:"tenant_name"`
	HostIP       string `mapstructure:"host_ip" validate:"omitempty,ip"`
}

// SetDefaults registers the default of every key. Keys without a default
// are invisible to AutomaticEnv during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyConfigPath, shared.LiveConfigPath)
	v.SetDefault(KeySetupPath, shared.SetupMarkerPath)
	v.SetDefault(KeySystemctlPath, shared.SystemctlPath)
	v.SetDefault(KeyTelegrafBinary, shared.TelegrafBinary)
	v.SetDefault(KeyTempDir, os.TempDir())
	v.SetDefault(KeyReleaseBaseURL, shared.ReleaseBaseURL)
	v.SetDefault(KeyAgentVersion, shared.DefaultAgentVersion)
	v.SetDefault(KeyOSReleasePath, shared.OSReleasePath)
	v.SetDefault(KeyPrivilegeCommand, "sudo")
	v.SetDefault(KeyResourceDir, "")
	v.SetDefault(KeyDownloadRetries, 2)
	v.SetDefault(KeyDownloadTimeout, 5*time.Minute)
	v.SetDefault(KeyCommandTimeout, time.Duration(0))
	v.SetDefault(KeyStrictExit, false)
	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyDeploymentID, "")
	v.SetDefault(KeyTenantName, "")
	v.SetDefault(KeyHostIP, "")
}

// ConfigureEnv makes viper read TELEGRAF_PLUGIN_* variables.
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(shared.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// LoadOptions selects the optional file sources.
type LoadOptions struct {
	// ConfigFile is a YAML settings file. A missing file is an error only
	// when Explicit is set.
	ConfigFile string
	Explicit   bool
	// EnvFile is a dotenv file loaded into the process environment
	// without overriding variables that are already set.
	EnvFile string
}

// Load resolves settings from defaults, the YAML file, the dotenv file,
// the environment and any flags already bound to v, in increasing priority.
func Load(v *viper.Viper, opts LoadOptions) (*Config, error) {
	SetDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if opts.Explicit || !isNotExist(err) {
				return nil, plugin_err.NewValidationError(
					fmt.Sprintf("failed to read config file %s: %v", opts.ConfigFile, err),
					"Check the file exists and is valid YAML")
			}
		}
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !isNotExist(err) {
			return nil, plugin_err.NewValidationError(
				fmt.Sprintf("failed to load env file %s: %v", opts.EnvFile, err))
		}
	}

	ConfigureEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, plugin_err.NewValidationError(fmt.Sprintf("invalid settings: %v", err))
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and cross-field rules.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s' validation", fe.Field(), fe.Tag()))
			}
			return plugin_err.NewValidationError("invalid settings: " + strings.Join(msgs, "; "))
		}
		return plugin_err.NewValidationError(fmt.Sprintf("invalid settings: %v", err))
	}
	return nil
}

func isNotExist(err error) bool {
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf)
}
