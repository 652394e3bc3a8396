/* pkg/platform/context.go */

package platform

import (
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
)

//
//---------------------------- OPERATING SYSTEMS ---------------------------- //
//

func osPlatform(goos string) string {
	switch goos {
	case "darwin":
		return "macos"
	case "linux":
		return "linux"
	case "windows":
		return "windows"
	default:
		return "unknown"
	}
}

// requireLinux fails with a non-recoverable error on any other OS.
func requireLinux(goos string) error {
	if osPlatform(goos) != "linux" {
		return plugin_err.NewNonRecoverable("Error! Telegraf plugin is available only on linux (detected %s): %w",
			osPlatform(goos), plugin_err.ErrUnsupportedPlatform)
	}
	return nil
}
