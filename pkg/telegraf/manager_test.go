package telegraf

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/config"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_io"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type releaseServer struct {
	*httptest.Server
	mu    sync.Mutex
	paths []string
}

func newReleaseServer(t *testing.T) *releaseServer {
	t.Helper()
	rs := &releaseServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		rs.paths = append(rs.paths, r.URL.Path)
		rs.mu.Unlock()
		_, _ = w.Write([]byte("artifact"))
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *releaseServer) requests() []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]string(nil), rs.paths...)
}

type fixture struct {
	dir     string
	manager *Manager
	mock    *testutil.MockCommand
	server  *releaseServer
}

func newFixture(t *testing.T, distro string) *fixture {
	t.Helper()
	dir := t.TempDir()
	srv := newReleaseServer(t)

	cfg := &config.Config{
		ConfigPath:      filepath.Join(dir, "etc", "telegraf", "telegraf.conf"),
		SetupPath:       filepath.Join(dir, "opt", "telegraf"),
		SystemctlPath:   filepath.Join(dir, "usr", "bin", "systemctl"),
		TelegrafBinary:  "telegraf",
		TempDir:         filepath.Join(dir, "tmp"),
		ReleaseBaseURL:  srv.URL + "/telegraf/releases/",
		AgentVersion:    "1.4.0",
		OSReleasePath:   testutil.OSRelease(t, dir, distro),
		ResourceDir:     filepath.Join(dir, "resources"),
		DownloadRetries: 0,
		DownloadTimeout: 5 * time.Second,
	}

	mock := testutil.NewMockCommand()
	m, err := NewManager(cfg, mock, zaptest.NewLogger(t))
	require.NoError(t, err)
	m.Resolver.GOOS = "linux"
	m.Resolver.GOARCH = "amd64"

	// The privileged move is what makes the staged file live.
	mock.OnCommand("sudo mv "+m.StagingPath()+" "+cfg.ConfigPath, func(argv []string) {
		require.NoError(t, os.MkdirAll(filepath.Dir(cfg.ConfigPath), 0755))
		require.NoError(t, os.Rename(argv[2], argv[3]))
	})

	return &fixture{dir: dir, manager: m, mock: mock, server: srv}
}

func testDeployment() plugin_io.Deployment {
	return plugin_io.Deployment{DeploymentID: "dep-1", TenantName: "tenant-x", HostIP: "10.0.0.7"}
}

func TestInstallUbuntuEndToEnd(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "ubuntu")
	rc := plugin_io.NewTestContext(t, testDeployment())

	err := f.manager.Install(rc, InstallRequest{
		ConfigInputs: map[string]any{
			"global_tags": map[string]any{"env": "CTX_TENANT_NAME", "team": "ops"},
			"interval":    "15s",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"/telegraf/releases/telegraf_1.4.0-1_amd64.deb"}, f.server.requests())

	lines := f.mock.CommandLines()
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "sudo dpkg -i "), lines[0])
	assert.True(t, strings.HasSuffix(lines[0], ".deb"), lines[0])
	assert.Equal(t, "telegraf -config "+f.manager.StagingPath()+" -test", lines[1])
	assert.Equal(t, "sudo mv "+f.manager.StagingPath()+" "+f.manager.Config.ConfigPath, lines[2])

	live := f.manager.Config.ConfigPath
	testutil.AssertFileContains(t, live, `env = "tenant-x"`)
	testutil.AssertFileContains(t, live, `team = "ops"`)
	testutil.AssertFileContains(t, live, `interval = "15s"`)
	testutil.AssertFileContains(t, live, `[[inputs.cpu]]`)
	assert.NoFileExists(t, f.manager.StagingPath())
}

func TestInstallRedHatUsesRPM(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "centos")
	rc := plugin_io.NewTestContext(t, testDeployment())

	require.NoError(t, f.manager.Install(rc, InstallRequest{}))
	assert.Equal(t, []string{"/telegraf/releases/telegraf-1.4.0-1.x86_64.rpm"}, f.server.requests())
	assert.True(t, strings.HasPrefix(f.mock.CommandLines()[0], "sudo yum install -y "))
}

func TestInstallExplicitDownloadURL(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "debian")
	rc := plugin_io.NewTestContext(t, testDeployment())

	require.NoError(t, f.manager.Install(rc, InstallRequest{DownloadURL: f.server.URL + "/mirror/custom.deb"}))
	assert.Equal(t, []string{"/mirror/custom.deb"}, f.server.requests())
}

func TestInstallNonLinuxHasNoSideEffects(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "ubuntu")
	f.manager.Resolver.GOOS = "darwin"
	rc := plugin_io.NewTestContext(t, testDeployment())

	err := f.manager.Install(rc, InstallRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only on linux")
	assert.Equal(t, plugin_err.ExitNonRecoverable, plugin_err.GetExitCode(err))
	assert.Empty(t, f.server.requests())
	assert.Empty(t, f.mock.CommandLines())
	assert.NoDirExists(t, f.manager.Config.TempDir)
}

func TestInstallFailsWhenSetupPathExists(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "ubuntu")
	require.NoError(t, os.MkdirAll(f.manager.Config.SetupPath, 0755))
	rc := plugin_io.NewTestContext(t, testDeployment())

	err := f.manager.Install(rc, InstallRequest{})
	require.Error(t, err)
	assert.True(t, plugin_err.IsNonRecoverable(err))
	assert.Contains(t, err.Error(), "already exists")
	assert.Empty(t, f.server.requests())
	assert.Empty(t, f.mock.CommandLines())
}

func TestInstallUnsupportedDistro(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "alpine")
	rc := plugin_io.NewTestContext(t, testDeployment())

	err := f.manager.Install(rc, InstallRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin_err.ErrUnsupportedPlatform)
	assert.Empty(t, f.server.requests())
}

func TestInstallStopsOnPackageFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "ubuntu")
	f.mock.SetCommandPrefix("sudo dpkg -i ", testutil.MockCommandResult{
		Stderr:   "dpkg: error processing archive",
		ExitCode: 1,
	})
	rc := plugin_io.NewTestContext(t, testDeployment())

	err := f.manager.Install(rc, InstallRequest{})
	require.Error(t, err)
	assert.Equal(t, plugin_err.ExitRecoverable, plugin_err.GetExitCode(err))
	assert.Contains(t, err.Error(), "error processing archive")
	assert.Len(t, f.mock.CommandLines(), 1, "nothing runs after a failed install")
	assert.NoFileExists(t, f.manager.Config.ConfigPath)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	t.Run("requires setup path", func(t *testing.T) {
		f := newFixture(t, "ubuntu")
		rc := plugin_io.NewTestContext(t, testDeployment())

		err := f.manager.Remove(rc)
		require.Error(t, err)
		assert.True(t, plugin_err.IsNonRecoverable(err))
		assert.Contains(t, err.Error(), "not exists")
		assert.Empty(t, f.mock.CommandLines())
	})

	t.Run("removes package", func(t *testing.T) {
		f := newFixture(t, "ubuntu")
		require.NoError(t, os.MkdirAll(f.manager.Config.SetupPath, 0755))
		rc := plugin_io.NewTestContext(t, testDeployment())

		require.NoError(t, f.manager.Remove(rc))
		assert.Equal(t, []string{"sudo dpkg --remove telegraf"}, f.mock.CommandLines())
	})

	t.Run("non linux", func(t *testing.T) {
		f := newFixture(t, "ubuntu")
		require.NoError(t, os.MkdirAll(f.manager.Config.SetupPath, 0755))
		f.manager.Resolver.GOOS = "windows"
		rc := plugin_io.NewTestContext(t, testDeployment())

		err := f.manager.Remove(rc)
		assert.Equal(t, plugin_err.ExitNonRecoverable, plugin_err.GetExitCode(err))
		assert.Empty(t, f.mock.CommandLines())
	})
}

func TestConfigureInvalidLeavesLiveConfig(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "ubuntu")
	live := testutil.CreateTestFile(t, filepath.Dir(f.manager.Config.ConfigPath), "telegraf.conf", "previous", 0644)
	f.mock.SetCommand("telegraf -config "+f.manager.StagingPath()+" -test", testutil.MockCommandResult{
		Stderr:   "E! error loading config",
		ExitCode: 1,
	})
	rc := plugin_io.NewTestContext(t, testDeployment())

	err := f.manager.Configure(rc, "", map[string]any{"interval": "10s"})
	require.Error(t, err)
	assert.True(t, plugin_err.IsExpectedUserError(err))
	assert.Contains(t, err.Error(), "configuration file is invalid: "+f.manager.StagingPath())

	data, readErr := os.ReadFile(live)
	require.NoError(t, readErr)
	assert.Equal(t, "previous", string(data))
	for _, line := range f.mock.CommandLines() {
		assert.NotContains(t, line, "mv ")
	}
}

// TestConfigureInvalidWithStrictRunner validates through a strict runner
// in a child copy of the test binary. A rejected config must still come
// back as a user error rather than end the process.
func TestConfigureInvalidWithStrictRunner(t *testing.T) {
	if os.Getenv("PLUGIN_CONFIGURE_STRICT_CHILD") == "1" {
		f := newFixture(t, "ubuntu")
		f.manager.Executor = &execute.Runner{Strict: true}
		f.manager.Config.TelegrafBinary = testutil.CreateTestFile(t, f.dir, "bin/telegraf", "#!/bin/sh\nexit 1\n", 0755)
		err := f.manager.Configure(plugin_io.NewTestContext(t, testDeployment()), "", map[string]any{})
		os.Stdout.WriteString(fmt.Sprintf("EXIT=%d\n", plugin_err.GetExitCode(err)))
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestConfigureInvalidWithStrictRunner$")
	cmd.Env = append(os.Environ(), "PLUGIN_CONFIGURE_STRICT_CHILD=1")
	out, err := cmd.Output()

	require.NoError(t, err, "child output: %s", out)
	assert.Contains(t, string(out), fmt.Sprintf("EXIT=%d", plugin_err.ExitUserError))
}

func TestConfigureRenderFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "ubuntu")
	testutil.CreateTestFile(t, f.manager.Config.ResourceDir, "broken.conf", "{% for %}", 0644)
	rc := plugin_io.NewTestContext(t, testDeployment())

	err := f.manager.Configure(rc, "broken.conf", map[string]any{})
	require.Error(t, err)
	assert.True(t, plugin_err.IsExpectedUserError(err))
	assert.Contains(t, err.Error(), "wrong inputs provided! can't render configuration file")
	assert.Empty(t, f.mock.CommandLines())

	err = f.manager.Configure(rc, "missing.conf", map[string]any{})
	require.Error(t, err)
	assert.Equal(t, plugin_err.ExitUserError, plugin_err.GetExitCode(err))
}

func TestConfigureRejectsJinjaDictLoop(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "ubuntu")
	testutil.CreateTestFile(t, f.manager.Config.ResourceDir, "jinja.conf", `[global_tags]
{% for key, value in global_tags.items() %}  {{ key }} = "{{ value }}"
{% endfor %}`, 0644)
	rc := plugin_io.NewTestContext(t, testDeployment())

	err := f.manager.Configure(rc, "jinja.conf", map[string]any{"global_tags": map[string]any{"env": "prod"}})
	require.Error(t, err)
	assert.Equal(t, plugin_err.ExitUserError, plugin_err.GetExitCode(err))
	assert.Contains(t, err.Error(), "unsupported template syntax")
	assert.Empty(t, f.mock.CommandLines())
	assert.NoFileExists(t, f.manager.Config.ConfigPath)
}

func TestConfigureCustomTemplate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "ubuntu")
	testutil.CreateTestFile(t, f.manager.Config.ResourceDir, "custom.conf", `[agent]
  interval = "{{ interval }}"
`, 0644)
	rc := plugin_io.NewTestContext(t, testDeployment())

	require.NoError(t, f.manager.Configure(rc, "custom.conf", map[string]any{"interval": "10s"}))
	testutil.AssertFileContains(t, f.manager.Config.ConfigPath, `interval = "10s"`)
}

func TestStartStopDelegateToService(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "ubuntu")
	f.mock.SetCommand("sudo service telegraf restart", testutil.MockCommandResult{Stdout: "started"})
	f.mock.SetCommand("sudo service telegraf stop", testutil.MockCommandResult{Stdout: "stopped"})
	rc := plugin_io.NewTestContext(t, testDeployment())

	out, err := f.manager.Start(rc)
	require.NoError(t, err)
	assert.Equal(t, "started", out)

	out, err = f.manager.Stop(rc)
	require.NoError(t, err)
	assert.Equal(t, "stopped", out)
}

func TestDefaultTemplateIsEmbedded(t *testing.T) {
	data, err := Resources.ReadFile(DefaultTemplatePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "{{ interval")
}
