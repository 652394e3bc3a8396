// pkg/platform/release.go

package platform

import (
	"fmt"
	"net/url"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/shared"
	"github.com/hashicorp/go-version"
)

var debArch = map[string]string{
	"amd64": "amd64",
	"arm64": "arm64",
	"386":   "i386",
	"arm":   "armhf",
}

var rpmArch = map[string]string{
	"amd64": "x86_64",
	"arm64": "aarch64",
	"386":   "i386",
	"arm":   "armhfp",
}

// ReleaseArtifact names the upstream package for a family, agent version and GOARCH,
// e.g. telegraf_1.4.0-1_amd64.deb or telegraf-1.4.0-1.x86_64.rpm.
func ReleaseArtifact(family Family, agentVersion, goarch string) (string, error) {
	v, err := version.NewVersion(agentVersion)
	if err != nil {
		return "", plugin_err.NewValidationError(fmt.Sprintf("invalid agent version %q: %v", agentVersion, err))
	}

	switch family {
	case FamilyDebian:
		arch, ok := debArch[goarch]
		if !ok {
			return "", plugin_err.NewNonRecoverable("no telegraf .deb release for architecture %s", goarch)
		}
		return fmt.Sprintf("%s_%s-%s_%s.deb", shared.PackageName, v.String(), shared.PackageRevision, arch), nil
	case FamilyRedHat:
		arch, ok := rpmArch[goarch]
		if !ok {
			return "", plugin_err.NewNonRecoverable("no telegraf .rpm release for architecture %s", goarch)
		}
		return fmt.Sprintf("%s-%s-%s.%s.rpm", shared.PackageName, v.String(), shared.PackageRevision, arch), nil
	default:
		return "", plugin_err.NewNonRecoverable("unknown distribution family %q: %w", family, plugin_err.ErrUnsupportedPlatform)
	}
}

// DownloadURL joins the release base URL and artifact name.
func DownloadURL(base, artifact string) (string, error) {
	if base == "" {
		base = shared.ReleaseBaseURL
	}
	u, err := url.JoinPath(base, artifact)
	if err != nil {
		return "", plugin_err.NewValidationError(fmt.Sprintf("invalid release base URL %q: %v", base, err))
	}
	return u, nil
}

// DefaultDownloadURL computes the release URL for this host.
func (r *Resolver) DefaultDownloadURL(family Family, base, agentVersion string) (string, error) {
	artifact, err := ReleaseArtifact(family, agentVersion, r.GOARCH)
	if err != nil {
		return "", err
	}
	return DownloadURL(base, artifact)
}
