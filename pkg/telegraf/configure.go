// pkg/telegraf/configure.go

package telegraf

import (
	"fmt"
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_io"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// StagingPath is where a rendered config waits for validation.
func (m *Manager) StagingPath() string {
	return filepath.Join(m.Config.TempDir, shared.StagingConfigName)
}

// Configure renders the config template to the staging path, validates
// it with `telegraf -test`, and only then moves it over the live config.
// An empty templateSource selects the bundled default template.
func (m *Manager) Configure(rc *plugin_io.RuntimeContext, templateSource string, vars map[string]any) error {
	logger := otelzap.Ctx(rc.Ctx)
	staging := m.StagingPath()

	logger.Info("Configuring Telegraf...",
		zap.String("template", templateSource),
		zap.String("staging", staging),
		zap.Any("template_config", vars))

	// ASSESS
	content, err := m.render(rc, templateSource, vars)
	if err != nil {
		return plugin_err.NewExpectedError(cerr.Wrap(err, "wrong inputs provided! can't render configuration file"))
	}
	if err := m.Renderer.WriteOutput(staging, content, shared.FilePermStandard); err != nil {
		return plugin_err.NewFilesystemError("failed to write staging config", err)
	}

	if _, err := m.Executor.Run(rc.Ctx, execute.Options{
		Command:      m.Config.TelegrafBinary,
		Args:         []string{"-config", staging, "-test"},
		AllowFailure: true,
	}); err != nil {
		return plugin_err.NewExpectedError(
			fmt.Errorf("wrong inputs provided! configuration file is invalid: %s: %w", staging, err))
	}

	// INTERVENE
	if _, err := m.Executor.Run(rc.Ctx, execute.Options{
		Command: "mv",
		Args:    []string{staging, m.Config.ConfigPath},
		Sudo:    true,
	}); err != nil {
		return plugin_err.NewCommandError("failed to install "+m.Config.ConfigPath, err)
	}

	logger.Info("telegraf.conf was configured...", zap.String("path", m.Config.ConfigPath))
	return nil
}

func (m *Manager) render(rc *plugin_io.RuntimeContext, templateSource string, vars map[string]any) (string, error) {
	if templateSource == "" {
		return m.Renderer.RenderEmbedded(rc.Ctx, Resources, DefaultTemplatePath, vars, nil)
	}
	data, err := m.Resources.Read(rc, templateSource)
	if err != nil {
		return "", err
	}
	return m.Renderer.RenderString(rc.Ctx, string(data), vars, nil)
}
