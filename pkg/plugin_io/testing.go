// pkg/plugin_io/testing.go

package plugin_io

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

// NewTestContext creates a RuntimeContext suitable for testing. Logs go to t.Log.
func NewTestContext(t testing.TB, deployment Deployment) *RuntimeContext {
	t.Helper()
	logger := zaptest.NewLogger(t)
	return &RuntimeContext{
		Ctx:        context.Background(),
		Log:        logger,
		Timestamp:  time.Now(),
		RunID:      "test-run",
		Component:  "test",
		Command:    t.Name(),
		Deployment: deployment,
		Attributes: make(map[string]string),
	}
}
