// pkg/plugin_io/context.go

package plugin_io

import (
	"context"
	"os"
	"os/user"
	"runtime"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Deployment is the orchestrator identity of the node being managed.
type Deployment struct {
	DeploymentID string
	TenantName   string
	HostIP       string
}

// RuntimeContext is passed explicitly into every lifecycle operation.
type RuntimeContext struct {
	Ctx        context.Context
	Log        *zap.Logger
	Timestamp  time.Time
	Span       trace.Span
	RunID      string
	Command    string
	Component  string
	Deployment Deployment
	Attributes map[string]string
}

// NewContext sets up tracing and a scoped logger for one lifecycle call.
func NewContext(parent context.Context, cmdName string, deployment Deployment) *RuntimeContext {
	if parent == nil {
		parent = context.Background()
	}
	ctx, span := telemetry.Start(parent, cmdName,
		attribute.String("deployment.id", deployment.DeploymentID),
		attribute.String("tenant.name", deployment.TenantName),
	)

	runID := uuid.NewString()
	comp, _ := resolveCallContext(3)
	logger := zap.L().With(
		zap.String("component", comp),
		zap.String("action", cmdName),
		zap.String("run_id", runID),
		zap.String("deployment_id", deployment.DeploymentID),
	).Named(comp)

	logEnv(logger)

	return &RuntimeContext{
		Ctx:        ctx,
		Span:       span,
		Log:        logger,
		Timestamp:  time.Now(),
		RunID:      runID,
		Component:  comp,
		Command:    cmdName,
		Deployment: deployment,
		Attributes: make(map[string]string),
	}
}

// HandlePanic recovers panics, logs them, and converts to an error.
func (rc *RuntimeContext) HandlePanic(errPtr *error) {
	if r := recover(); r != nil {
		*errPtr = cerr.AssertionFailedf("panic: %v", r)
		rc.Log.Error("panic recovered", zap.Any("panic", r))
	}
}

// End logs outcome, emits a telemetry span with key attributes, and flushes.
func (rc *RuntimeContext) End(errPtr *error) {
	if rc.Span != nil {
		defer rc.Span.End()
	}

	var err error
	if errPtr != nil {
		err = *errPtr
	}
	duration := time.Since(rc.Timestamp)
	success := err == nil

	if success {
		rc.Log.Info("Command completed", zap.Duration("duration", duration))
	} else {
		rc.Log.Error("Command failed",
			zap.Duration("duration", duration),
			zap.String("error_type", plugin_err.Classify(err)),
			zap.Error(err))
	}

	if rc.Span != nil {
		rc.Span.SetAttributes(
			attribute.Bool("success", success),
			attribute.Int64("duration_ms", duration.Milliseconds()),
			attribute.String("os", runtime.GOOS),
			attribute.String("args", telemetry.TruncateArgs(os.Args[1:])),
			attribute.String("version", shared.Version),
			attribute.String("error_type", plugin_err.Classify(err)),
		)
		if err != nil {
			rc.Span.RecordError(err)
		}
	}

	shared.SafeSync(rc.Log)
}

// Replacements maps the placeholder tokens accepted in global_tags to
// the values of this deployment.
func (d Deployment) Replacements() map[string]string {
	return map[string]string{
		shared.PlaceholderDeploymentID: d.DeploymentID,
		shared.PlaceholderTenantName:   d.TenantName,
		shared.PlaceholderHostIP:       d.HostIP,
	}
}

func logEnv(log *zap.Logger) {
	if u, err := user.Current(); err == nil {
		log.Debug("user context",
			zap.String("username", u.Username),
			zap.String("uid", u.Uid),
			zap.Int("effective_uid", os.Geteuid()),
		)
	}
	if exe, err := os.Executable(); err == nil {
		log.Debug("executable path", zap.String("path", exe))
	}
}

func resolveCallContext(skip int) (component, action string) {
	pc, file, _, ok := runtime.Caller(skip)
	if !ok {
		return "unknown", "unknown"
	}
	parts := strings.Split(file, "/")
	if len(parts) >= 2 {
		component = parts[len(parts)-2]
	} else {
		component = strings.TrimSuffix(parts[0], ".go")
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		fields := strings.Split(fn.Name(), ".")
		action = fields[len(fields)-1]
	} else {
		action = "unknown"
	}
	return
}
