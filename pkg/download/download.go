// pkg/download/download.go

package download

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_io"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/telemetry"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Config controls the HTTP transport used for downloads.
type Config struct {
	Retries      int
	Timeout      time.Duration
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// TempDir holds downloads without an explicit destination. Empty means os.TempDir().
	TempDir string
}

// Downloader fetches release artifacts and templates over HTTP(S).
type Downloader struct {
	client  *retryablehttp.Client
	tempDir string
}

// New creates a Downloader. Redirects are followed; 4xx responses are never retried.
func New(cfg Config, logger *zap.Logger) *Downloader {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.Retries
	if cfg.RetryWaitMin > 0 {
		client.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		client.RetryWaitMax = cfg.RetryWaitMax
	}
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client.Logger = &leveledLogger{log: logger.Named("http")}
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Downloader{client: client, tempDir: cfg.TempDir}
}

// Fetch downloads source to destination and returns the written path.
// With an empty destination a temp file is created that keeps the URL's
// extension; it is left for the caller to remove. A partial file is removed on failure.
func (d *Downloader) Fetch(rc *plugin_io.RuntimeContext, source, destination string) (string, error) {
	logger := otelzap.Ctx(rc.Ctx)
	ctx, span := telemetry.Start(rc.Ctx, "download.Fetch", attribute.String("url", source))
	defer span.End()

	u, err := url.Parse(source)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", plugin_err.NewExpectedError(fmt.Errorf("invalid download URL %q", source))
	}

	logger.Info("Downloading file", zap.String("url", source))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return "", plugin_err.NewNetworkError("failed to build request", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return "", plugin_err.NewNetworkError(fmt.Sprintf("GET %s failed", source), err,
			"Check network access from this host", "Check the download URL")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		return "", plugin_err.NewNetworkError(fmt.Sprintf("GET %s returned %s", source, resp.Status), nil,
			"Check the download URL")
	}

	file, err := d.create(u, destination)
	if err != nil {
		return "", err
	}
	dest := file.Name()

	written, copyErr := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(dest)
		if copyErr == nil {
			copyErr = closeErr
		}
		return "", plugin_err.NewNetworkError(fmt.Sprintf("failed writing %s", dest), copyErr)
	}

	logger.Debug("Downloaded file",
		zap.String("url", source),
		zap.String("destination", dest),
		zap.Int64("bytes", written))
	return dest, nil
}

func (d *Downloader) create(u *url.URL, destination string) (*os.File, error) {
	if destination == "" {
		dir := d.tempDir
		if dir == "" {
			dir = os.TempDir()
		}
		if err := os.MkdirAll(dir, shared.DirPermStandard); err != nil {
			return nil, plugin_err.NewFilesystemError("failed to create temp dir", err)
		}
		f, err := os.CreateTemp(dir, "telegraf-*"+path.Ext(u.Path))
		if err != nil {
			return nil, plugin_err.NewFilesystemError("failed to create temp file", err)
		}
		return f, nil
	}

	if err := os.MkdirAll(filepath.Dir(destination), shared.DirPermStandard); err != nil {
		return nil, plugin_err.NewFilesystemError("failed to create destination dir", err)
	}
	f, err := os.OpenFile(destination, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, shared.FilePermStandard)
	if err != nil {
		return nil, plugin_err.NewFilesystemError("failed to open destination", err)
	}
	return f, nil
}

// leveledLogger adapts zap to retryablehttp.LeveledLogger.
type leveledLogger struct {
	log *zap.Logger
}

func (l *leveledLogger) Error(msg string, kv ...interface{}) { l.log.Sugar().Errorw(msg, kv...) }
func (l *leveledLogger) Warn(msg string, kv ...interface{})  { l.log.Sugar().Warnw(msg, kv...) }
func (l *leveledLogger) Info(msg string, kv ...interface{})  { l.log.Sugar().Debugw(msg, kv...) }
func (l *leveledLogger) Debug(msg string, kv ...interface{}) { l.log.Sugar().Debugw(msg, kv...) }
