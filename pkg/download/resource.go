// pkg/download/resource.go

package download

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ResourceFetcher resolves operator-supplied resources such as a
// config template: http(s) URLs are downloaded, file:// URLs and
// absolute paths are read directly, anything else is relative to Dir.
type ResourceFetcher struct {
	Downloader *Downloader
	Dir        string
}

// Read returns the content of a resource.
func (f *ResourceFetcher) Read(rc *plugin_io.RuntimeContext, source string) ([]byte, error) {
	logger := otelzap.Ctx(rc.Ctx)

	if u, err := url.Parse(source); err == nil {
		switch u.Scheme {
		case "http", "https":
			if f.Downloader == nil {
				return nil, fmt.Errorf("no downloader configured for %s", source)
			}
			path, err := f.Downloader.Fetch(rc, source, "")
			if err != nil {
				return nil, err
			}
			defer os.Remove(path)
			return os.ReadFile(path)
		case "file":
			source = u.Path
		}
	}

	path := f.resolve(source)
	logger.Debug("Reading resource", zap.String("source", source), zap.String("path", path))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resource %s: %w", source, err)
	}
	return data, nil
}

func (f *ResourceFetcher) resolve(source string) string {
	if filepath.IsAbs(source) || f.Dir == "" {
		return source
	}
	clean := filepath.Clean("/" + strings.TrimPrefix(source, "/"))
	return filepath.Join(f.Dir, clean)
}
