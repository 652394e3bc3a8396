// pkg/platform/family.go

package platform

import (
	"runtime"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_io"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/shared"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Family groups distributions that share a package manager convention.
type Family string

const (
	FamilyDebian Family = "debian"
	FamilyRedHat Family = "redhat"
)

var distroFamilies = map[string]Family{
	"ubuntu": FamilyDebian,
	"debian": FamilyDebian,
	"centos": FamilyRedHat,
	"redhat": FamilyRedHat,
}

// ResolveFamily maps a distribution ID to its family.
func ResolveFamily(distroID string) (Family, error) {
	if f, ok := distroFamilies[distroID]; ok {
		return f, nil
	}
	return "", plugin_err.NewNonRecoverable(
		"Error! distribution %q is not supported. Ubuntu, Debian, Centos and Redhat are supported currently: %w",
		distroID, plugin_err.ErrUnsupportedPlatform)
}

// Resolver answers platform questions for one host.
type Resolver struct {
	OSReleasePath string
	GOOS          string
	GOARCH        string
}

// NewResolver returns a Resolver for the running host.
func NewResolver(osReleasePath string) *Resolver {
	if osReleasePath == "" {
		osReleasePath = shared.OSReleasePath
	}
	return &Resolver{
		OSReleasePath: osReleasePath,
		GOOS:          runtime.GOOS,
		GOARCH:        runtime.GOARCH,
	}
}

// RequireLinux fails before any side effect on non-Linux hosts.
func (r *Resolver) RequireLinux() error {
	return requireLinux(r.GOOS)
}

// Distro returns the lowercase os-release ID.
func (r *Resolver) Distro(rc *plugin_io.RuntimeContext) (string, error) {
	info, err := ParseOSRelease(rc, r.OSReleasePath)
	if err != nil {
		return "", plugin_err.WrapNonRecoverable(err)
	}
	return info.ID, nil
}

// Family detects the host distribution and maps it to a Family.
func (r *Resolver) Family(rc *plugin_io.RuntimeContext) (Family, error) {
	if err := r.RequireLinux(); err != nil {
		return "", err
	}
	id, err := r.Distro(rc)
	if err != nil {
		return "", err
	}
	family, err := ResolveFamily(id)
	if err != nil {
		return "", err
	}
	otelzap.Ctx(rc.Ctx).Debug("Resolved distribution family",
		zap.String("distro", id),
		zap.String("family", string(family)))
	return family, nil
}
