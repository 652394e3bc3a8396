/* pkg/logger/paths.go */

package logger

import (
	"os"
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/shared"
)

// PlatformLogPaths returns candidate log paths in order of priority.
func PlatformLogPaths() []string {
	paths := []string{shared.PluginLogs}
	if state := xdgStatePath(); state != "" {
		paths = append(paths, state)
	}
	return append(paths, shared.PluginLogsPWD, "/tmp/telegraf-plugin/plugin.log")
}

func xdgStatePath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, shared.PluginID, "plugin.log")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "state", shared.PluginID, "plugin.log")
	}
	return ""
}
