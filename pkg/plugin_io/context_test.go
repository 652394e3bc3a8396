package plugin_io

import (
	"context"
	"errors"
	"testing"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedContext(t *testing.T) (*RuntimeContext, *observer.ObservedLogs) {
	t.Helper()
	rc := NewContext(context.Background(), "install", Deployment{DeploymentID: "dep-1", TenantName: "tenant-x"})
	core, logs := observer.New(zapcore.DebugLevel)
	rc.Log = zap.New(core)
	return rc, logs
}

func TestNewContext(t *testing.T) {
	t.Parallel()

	d := Deployment{DeploymentID: "dep-1", TenantName: "tenant-x", HostIP: "10.0.0.7"}
	rc := NewContext(nil, "install", d)

	require.NotNil(t, rc.Ctx)
	require.NotNil(t, rc.Span)
	require.NotNil(t, rc.Log)
	assert.Equal(t, "install", rc.Command)
	assert.Equal(t, d, rc.Deployment)
	assert.NotEmpty(t, rc.RunID)
	assert.NotEmpty(t, rc.Component)
	assert.NotNil(t, rc.Attributes)
	assert.False(t, rc.Timestamp.IsZero())

	other := NewContext(context.Background(), "install", d)
	assert.NotEqual(t, rc.RunID, other.RunID)
}

func TestEndLogsSuccess(t *testing.T) {
	t.Parallel()

	rc, logs := observedContext(t)
	var err error
	rc.End(&err)

	entries := logs.FilterMessage("Command completed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Contains(t, entries[0].ContextMap(), "duration")
}

func TestEndClassifiesFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"user", plugin_err.NewExpectedError(errors.New("bad inputs")), "user"},
		{"non recoverable", plugin_err.NewNonRecoverable("marker missing"), "non_recoverable"},
		{"system", errors.New("dpkg failed"), "system"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, logs := observedContext(t)
			err := tt.err
			rc.End(&err)

			entries := logs.FilterMessage("Command failed").All()
			require.Len(t, entries, 1)
			assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
			assert.Equal(t, tt.want, entries[0].ContextMap()["error_type"])
		})
	}
}

func TestEndToleratesNilErrorPointer(t *testing.T) {
	t.Parallel()

	rc, logs := observedContext(t)
	rc.End(nil)
	assert.Equal(t, 1, logs.FilterMessage("Command completed").Len())
}

func TestHandlePanic(t *testing.T) {
	t.Parallel()

	rc, logs := observedContext(t)
	run := func() (err error) {
		defer rc.HandlePanic(&err)
		panic("boom")
	}

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, plugin_err.ExitInternal, plugin_err.GetExitCode(err))
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestDeploymentReplacements(t *testing.T) {
	t.Parallel()

	d := Deployment{DeploymentID: "dep-1", TenantName: "tenant-x", HostIP: "10.0.0.7"}
	assert.Equal(t, map[string]string{
		shared.PlaceholderDeploymentID: "dep-1",
		shared.PlaceholderTenantName:   "tenant-x",
		shared.PlaceholderHostIP:       "10.0.0.7",
	}, d.Replacements())

	assert.Equal(t, "", Deployment{}.Replacements()[shared.PlaceholderHostIP])
}
