// pkg/shared/vars.go

package shared

import (
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

// Build-time variables injected via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var syncedAlready atomic.Bool

// SafeSync flushes the logger once per process. Sync on stdout/stderr
// returns EINVAL/ENOTTY on most Linux hosts; those are not worth reporting.
func SafeSync(log *zap.Logger) {
	if log == nil || syncedAlready.Swap(true) {
		return
	}
	if err := log.Sync(); err != nil && !isIgnorableSyncError(err) {
		log.Warn("Failed to flush logs", zap.Error(err))
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") ||
		strings.Contains(msg, "inappropriate ioctl for device")
}
