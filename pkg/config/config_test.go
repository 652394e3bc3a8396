package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/shared"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, shared.LiveConfigPath, cfg.ConfigPath)
	assert.Equal(t, shared.SetupMarkerPath, cfg.SetupPath)
	assert.Equal(t, shared.SystemctlPath, cfg.SystemctlPath)
	assert.Equal(t, shared.DefaultAgentVersion, cfg.AgentVersion)
	assert.Equal(t, "sudo", cfg.PrivilegeCommand)
	assert.Equal(t, 2, cfg.DownloadRetries)
	assert.Equal(t, 5*time.Minute, cfg.DownloadTimeout)
	assert.Zero(t, cfg.CommandTimeout)
	assert.False(t, cfg.StrictExit)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(
		"agent_version: 1.20.0\n"+
			"download_retries: 4\n"+
			"command_timeout: 90s\n"+
			"temp_dir: /from/file\n"), 0644))

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TELEGRAF_PLUGIN_TENANT_NAME=from-dotenv\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("TELEGRAF_PLUGIN_TENANT_NAME") })

	t.Setenv("TELEGRAF_PLUGIN_DOWNLOAD_RETRIES", "5")

	v := viper.New()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("temp-dir", "", "")
	require.NoError(t, flags.Parse([]string{"--temp-dir=/from/flag"}))
	require.NoError(t, v.BindPFlag(KeyTempDir, flags.Lookup("temp-dir")))

	cfg, err := Load(v, LoadOptions{ConfigFile: file, Explicit: true, EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, "1.20.0", cfg.AgentVersion, "file overrides default")
	assert.Equal(t, 5, cfg.DownloadRetries, "env overrides file")
	assert.Equal(t, 90*time.Second, cfg.CommandTimeout)
	assert.Equal(t, "/from/flag", cfg.TempDir, "flag overrides file")
	assert.Equal(t, "from-dotenv", cfg.TenantName)
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	_, err := Load(viper.New(), LoadOptions{ConfigFile: missing})
	assert.NoError(t, err, "implicit config file is optional")

	_, err = Load(viper.New(), LoadOptions{ConfigFile: missing, Explicit: true})
	require.Error(t, err)
	assert.Equal(t, plugin_err.ExitUserError, plugin_err.GetExitCode(err))
}

func TestValidate(t *testing.T) {
	cfg, err := Load(viper.New(), LoadOptions{})
	require.NoError(t, err)

	bad := *cfg
	bad.DownloadRetries = 50
	bad.HostIP = "not-an-ip"
	bad.ReleaseBaseURL = ""
	err = Validate(&bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DownloadRetries")
	assert.Contains(t, err.Error(), "HostIP")
	assert.Contains(t, err.Error(), "ReleaseBaseURL")
	assert.Equal(t, plugin_err.ExitUserError, plugin_err.GetExitCode(err))

	good := *cfg
	good.HostIP = "10.0.0.5"
	assert.NoError(t, Validate(&good))
}
