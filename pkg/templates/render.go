// pkg/templates/render.go
// Sandboxed Django-syntax template rendering
//
// Templates use pongo2's Django syntax ({{ interval|default:"10s" }},
// {% for k, v in tags sorted %}). Jinja-only constructs are rejected before
// parsing. Rendering has:
// - Rate limiting
// - Size limits
// - Timeout enforcement
// - Structured logging

package templates

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/flosch/pongo2/v6"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultMaxTemplateSize bounds both template source and rendered output.
	DefaultMaxTemplateSize = 1 * 1024 * 1024 // 1MB

	DefaultTemplateTimeout = 30 * time.Second

	RateLimitBurst     = 5
	RateLimitPerMinute = 10
)

// Tags a template fetched from an orchestrator resource must not use:
// they would read other files from the host.
var bannedTags = []string{"include", "import", "extends", "ssi"}

// ErrUnsupportedSyntax is returned for Jinja constructs pongo2 would
// otherwise parse as something else or reject with an unhelpful message.
var ErrUnsupportedSyntax = errors.New("unsupported template syntax")

var (
	templateTag = regexp.MustCompile(`(?s)\{[{%].*?[}%]\}`)

	jinjaConstructs = []struct {
		pattern *regexp.Regexp
		hint    string
	}{
		{regexp.MustCompile(`\.(items|keys|values)\(\s*\)`), `iterate the mapping directly: {% for k, v in tags sorted %}`},
		{regexp.MustCompile(`\|\s*\w+\(`), `filter arguments follow a colon: {{ interval|default:"10s" }}`},
		{regexp.MustCompile(`\bis\s+(not\s+)?defined\b`), `test the variable itself: {% if interval %}`},
	}
)

// checkSyntax rejects Jinja-only constructs. A `.items()` call in
// particular renders as an empty loop under pongo2.
func checkSyntax(tmplStr string) error {
	for _, tag := range templateTag.FindAllString(tmplStr, -1) {
		for _, c := range jinjaConstructs {
			if c.pattern.MatchString(tag) {
				return fmt.Errorf("%w: %q: %s", ErrUnsupportedSyntax, tag, c.hint)
			}
		}
	}
	return nil
}

// Output is config text, not HTML.
var disableAutoescape sync.Once

// RenderOptions tunes a single render call.
type RenderOptions struct {
	MaxSize             int64
	Timeout             time.Duration
	DisableRateLimiting bool
}

// DefaultRenderOptions returns the limits used for config rendering.
func DefaultRenderOptions() *RenderOptions {
	return &RenderOptions{
		MaxSize: DefaultMaxTemplateSize,
		Timeout: DefaultTemplateTimeout,
	}
}

// Renderer renders templates inside a sandboxed pongo2 set.
type Renderer struct {
	logger  *zap.Logger
	set     *pongo2.TemplateSet
	limiter *rate.Limiter
}

// NewRenderer creates a new template renderer
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.L()
	}
	disableAutoescape.Do(func() { pongo2.SetAutoescape(false) })

	loader, err := pongo2.NewLocalFileSystemLoader("")
	if err != nil {
		return nil, fmt.Errorf("failed to create template loader: %w", err)
	}
	set := pongo2.NewSet("telegraf-plugin", loader)
	for _, tag := range bannedTags {
		if err := set.BanTag(tag); err != nil {
			return nil, fmt.Errorf("failed to ban template tag %q: %w", tag, err)
		}
	}

	return &Renderer{
		logger:  logger.Named("template-renderer"),
		set:     set,
		limiter: rate.NewLimiter(rate.Every(time.Minute/RateLimitPerMinute), RateLimitBurst),
	}, nil
}

// RenderString renders a template from a string with the given variables.
func (r *Renderer) RenderString(ctx context.Context, tmplStr string, data map[string]any, opts *RenderOptions) (string, error) {
	if opts == nil {
		opts = DefaultRenderOptions()
	}

	if !opts.DisableRateLimiting && !r.limiter.Allow() {
		r.logger.Warn("Template rendering rate limit exceeded")
		return "", fmt.Errorf("rate limit exceeded for template operations (max %d/min)", RateLimitPerMinute)
	}

	if int64(len(tmplStr)) > opts.MaxSize {
		r.logger.Error("Template size exceeds limit",
			zap.Int("size", len(tmplStr)),
			zap.Int64("max_size", opts.MaxSize))
		return "", fmt.Errorf("template size %d exceeds limit %d", len(tmplStr), opts.MaxSize)
	}

	if err := checkSyntax(tmplStr); err != nil {
		r.logger.Error("Template uses unsupported syntax", zap.Error(err))
		return "", err
	}

	renderCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	tmpl, err := r.set.FromString(tmplStr)
	if err != nil {
		r.logger.Error("Failed to parse template", zap.Error(err))
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	type outcome struct {
		out string
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		out, err := tmpl.Execute(pongo2.Context(data))
		if err != nil {
			err = fmt.Errorf("failed to execute template: %w", err)
		}
		done <- outcome{out: out, err: err}
	}()

	select {
	case <-renderCtx.Done():
		r.logger.Error("Template rendering timed out",
			zap.Duration("timeout", opts.Timeout))
		return "", fmt.Errorf("template rendering timed out after %s", opts.Timeout)
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		if int64(len(res.out)) > opts.MaxSize {
			return "", fmt.Errorf("rendered output size %d exceeds limit %d", len(res.out), opts.MaxSize)
		}
		r.logger.Debug("Template rendered successfully",
			zap.Int("output_size", len(res.out)))
		return res.out, nil
	}
}

// RenderEmbedded renders a template from an embedded filesystem
func (r *Renderer) RenderEmbedded(ctx context.Context, fsys fs.FS, templatePath string, data map[string]any, opts *RenderOptions) (string, error) {
	r.logger.Debug("Rendering embedded template",
		zap.String("path", templatePath))

	tmplBytes, err := fs.ReadFile(fsys, templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to read embedded template %s: %w", templatePath, err)
	}

	return r.RenderString(ctx, string(tmplBytes), data, opts)
}

// WriteOutput writes rendered content, creating the parent directory.
func (r *Renderer) WriteOutput(outputPath, content string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output dir for %s: %w", outputPath, err)
	}
	if err := os.WriteFile(outputPath, []byte(content), perm); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outputPath, err)
	}

	r.logger.Info("Template rendered to file successfully",
		zap.String("output", outputPath),
		zap.Int("size", len(content)))
	return nil
}
