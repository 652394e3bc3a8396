// pkg/telegraf/manager.go

package telegraf

import (
	"errors"
	"io/fs"
	"os"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/config"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/download"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/packages"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_io"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/service"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/templates"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// InstallRequest carries the inputs of one install call.
type InstallRequest struct {
	// ConfigInputs are the template variables. A global_tags map in here
	// has its CTX_* placeholders substituted before rendering.
	ConfigInputs map[string]any
	// DownloadURL overrides the computed release URL.
	DownloadURL string
	// ConfigFile is a template resource used instead of the bundled default.
	ConfigFile string
}

// Manager runs the Telegraf lifecycle on the local host.
type Manager struct {
	Config     *config.Config
	Resolver   *platform.Resolver
	Downloader *download.Downloader
	Resources  *download.ResourceFetcher
	Packages   *packages.Installer
	Service    *service.Controller
	Renderer   *templates.Renderer
	Executor   execute.Executor
}

// NewManager wires every component from cfg around one executor.
func NewManager(cfg *config.Config, executor execute.Executor, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer, err := templates.NewRenderer(logger)
	if err != nil {
		return nil, err
	}

	resolver := platform.NewResolver(cfg.OSReleasePath)
	downloader := download.New(download.Config{
		Retries: cfg.DownloadRetries,
		Timeout: cfg.DownloadTimeout,
		TempDir: cfg.TempDir,
	}, logger)

	return &Manager{
		Config:     cfg,
		Resolver:   resolver,
		Downloader: downloader,
		Resources:  &download.ResourceFetcher{Downloader: downloader, Dir: cfg.ResourceDir},
		Packages:   packages.NewInstaller(resolver, executor),
		Service:    service.NewController(executor, cfg.SystemctlPath),
		Renderer:   renderer,
		Executor:   executor,
	}, nil
}

// Install downloads the release for this host, installs it, and writes a
// validated configuration. It fails before any side effect on non-Linux
// hosts and when the setup path already exists.
func (m *Manager) Install(rc *plugin_io.RuntimeContext, req InstallRequest) error {
	logger := otelzap.Ctx(rc.Ctx)

	// ASSESS
	if err := m.Resolver.RequireLinux(); err != nil {
		return err
	}
	exists, err := m.setupExists()
	if err != nil {
		return err
	}
	if exists {
		return plugin_err.NewNonRecoverable("Error! %s file already exists, can't create dir.", m.Config.SetupPath)
	}

	family, err := m.Resolver.Family(rc)
	if err != nil {
		return err
	}

	url := req.DownloadURL
	if url == "" {
		url, err = m.Resolver.DefaultDownloadURL(family, m.Config.ReleaseBaseURL, m.Config.AgentVersion)
		if err != nil {
			return err
		}
	}

	// INTERVENE
	logger.Info("Installing Telegraf",
		zap.String("url", url),
		zap.String("family", string(family)),
		zap.String("deployment_id", rc.Deployment.DeploymentID))

	artifact, err := m.Downloader.Fetch(rc, url, "")
	if err != nil {
		return err
	}
	if err := m.Packages.Install(rc, artifact); err != nil {
		return err
	}

	// EVALUATE
	return m.Configure(rc, req.ConfigFile, PrepareInputs(req.ConfigInputs, rc.Deployment))
}

// Remove uninstalls the package. The setup path must exist.
func (m *Manager) Remove(rc *plugin_io.RuntimeContext) error {
	if err := m.Resolver.RequireLinux(); err != nil {
		return err
	}
	exists, err := m.setupExists()
	if err != nil {
		return err
	}
	if !exists {
		return plugin_err.NewNonRecoverable("Error! %s file not exists.", m.Config.SetupPath)
	}
	return m.Packages.Remove(rc)
}

// Start restarts and enables the service, returning its stdout.
func (m *Manager) Start(rc *plugin_io.RuntimeContext) (string, error) {
	return m.Service.Start(rc)
}

// Stop stops the service, returning its stdout.
func (m *Manager) Stop(rc *plugin_io.RuntimeContext) (string, error) {
	return m.Service.Stop(rc)
}

// Status reports the service state.
func (m *Manager) Status(rc *plugin_io.RuntimeContext) (service.State, error) {
	return m.Service.Status(rc)
}

func (m *Manager) setupExists() (bool, error) {
	_, err := os.Stat(m.Config.SetupPath)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, plugin_err.NewFilesystemError("failed to check "+m.Config.SetupPath, err)
}
