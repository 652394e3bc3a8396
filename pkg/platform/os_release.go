// pkg/platform/os_release.go

package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_io"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/shared"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// OSReleaseInfo represents parsed /etc/os-release information
type OSReleaseInfo struct {
	Name            string
	VersionID       string
	VersionCodename string
	ID              string
	IDLike          string
	PrettyName      string
}

// ParseOSRelease reads an os-release file. When path is the default and
// missing, /usr/lib/os-release is tried as os-release(5) prescribes.
func ParseOSRelease(rc *plugin_io.RuntimeContext, path string) (*OSReleaseInfo, error) {
	logger := otelzap.Ctx(rc.Ctx)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && path == shared.OSReleasePath {
		logger.Debug("os-release missing, trying fallback", zap.String("path", shared.OSReleaseFallback))
		data, err = os.ReadFile(shared.OSReleaseFallback)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	info := parseOSReleaseData(string(data))

	logger.Debug("Parsed OS release information",
		zap.String("id", info.ID),
		zap.String("id_like", info.IDLike),
		zap.String("version_id", info.VersionID),
		zap.String("pretty_name", info.PrettyName),
	)

	return info, nil
}

func parseOSReleaseData(data string) *OSReleaseInfo {
	info := &OSReleaseInfo{}

	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		// Remove quotes if present (handles both "value" and value formats)
		value = strings.Trim(strings.TrimSpace(value), "\"'")

		switch key {
		case "NAME":
			info.Name = value
		case "VERSION_ID":
			info.VersionID = value
		case "VERSION_CODENAME":
			info.VersionCodename = value
		case "ID":
			info.ID = strings.ToLower(value)
		case "ID_LIKE":
			info.IDLike = strings.ToLower(value)
		case "PRETTY_NAME":
			info.PrettyName = value
		}
	}

	return info
}
