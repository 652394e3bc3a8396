/*
main.go

Copyright © 2025 Code Monkey Cybersecurity
Contact: git@cybermonkey.net.au

This file is part of telegraf-plugin.

This software is dual-licensed under the Do No Harm License
and the GNU Affero General Public License v3 (AGPL-3.0-or-later).
You may use, modify, and distribute it under the terms of either license.

See LICENSE.agpl and LICENSE.dnh for full details.
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/cmd"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/telemetry"
	"go.uber.org/zap"
)

func main() {
	logger.InitializeWithFallback()

	if err := telemetry.Init(shared.PluginID); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Telemetry disabled: %v\n", err)
	}

	code := cmd.Execute()

	if err := telemetry.Shutdown(context.Background()); err != nil {
		logger.L().Warn("Failed to flush telemetry", zap.Error(err))
	}
	shared.SafeSync(logger.L())
	os.Exit(code)
}
