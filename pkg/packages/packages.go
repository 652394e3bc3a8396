// pkg/packages/packages.go

package packages

import (
	"fmt"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_io"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/shared"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Installer drives the native package manager of the host family.
type Installer struct {
	Resolver *platform.Resolver
	Executor execute.Executor
	// Package is the name passed to the package manager on removal.
	Package string
}

// NewInstaller returns an Installer for the telegraf package.
func NewInstaller(resolver *platform.Resolver, executor execute.Executor) *Installer {
	return &Installer{Resolver: resolver, Executor: executor, Package: shared.PackageName}
}

// InstallCommand returns the argv (without privilege prefix) that installs a local artifact.
func InstallCommand(family platform.Family, artifactPath string) (execute.Options, error) {
	switch family {
	case platform.FamilyDebian:
		return execute.Options{Command: "dpkg", Args: []string{"-i", artifactPath}, Sudo: true}, nil
	case platform.FamilyRedHat:
		return execute.Options{Command: "yum", Args: []string{"install", "-y", artifactPath}, Sudo: true}, nil
	}
	return execute.Options{}, fmt.Errorf("no package manager for family %q: %w", family, plugin_err.ErrUnsupportedPlatform)
}

// RemoveCommand returns the argv that removes an installed package.
func RemoveCommand(family platform.Family, pkg string) (execute.Options, error) {
	switch family {
	case platform.FamilyDebian:
		return execute.Options{Command: "dpkg", Args: []string{"--remove", pkg}, Sudo: true}, nil
	case platform.FamilyRedHat:
		// -y: without it yum waits for a confirmation nobody can give.
		return execute.Options{Command: "yum", Args: []string{"remove", "-y", pkg}, Sudo: true}, nil
	}
	return execute.Options{}, fmt.Errorf("no package manager for family %q: %w", family, plugin_err.ErrUnsupportedPlatform)
}

// Install installs a downloaded .deb or .rpm with elevated privileges.
func (i *Installer) Install(rc *plugin_io.RuntimeContext, artifactPath string) error {
	logger := otelzap.Ctx(rc.Ctx)

	// ASSESS
	family, err := i.Resolver.Family(rc)
	if err != nil {
		return err
	}
	opts, err := InstallCommand(family, artifactPath)
	if err != nil {
		return plugin_err.WrapNonRecoverable(err)
	}

	// INTERVENE
	logger.Info("Installing Telegraf",
		zap.String("artifact", artifactPath),
		zap.String("family", string(family)))
	if _, err := i.Executor.Run(rc.Ctx, opts); err != nil {
		return plugin_err.NewCommandError("package installation failed", err)
	}

	logger.Info("Telegraf package installed")
	return nil
}

// Remove uninstalls the package with elevated privileges.
func (i *Installer) Remove(rc *plugin_io.RuntimeContext) error {
	logger := otelzap.Ctx(rc.Ctx)

	family, err := i.Resolver.Family(rc)
	if err != nil {
		return err
	}
	opts, err := RemoveCommand(family, i.Package)
	if err != nil {
		return plugin_err.WrapNonRecoverable(err)
	}

	logger.Info("Removing Telegraf package", zap.String("family", string(family)))
	if _, err := i.Executor.Run(rc.Ctx, opts); err != nil {
		return plugin_err.NewCommandError("package removal failed", err)
	}

	logger.Info("Telegraf package removed")
	return nil
}
