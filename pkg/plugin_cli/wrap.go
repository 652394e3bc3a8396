// pkg/plugin_cli/wrap.go

package plugin_cli

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// Wrap ensures panic recovery, telemetry and outcome logging for a lifecycle command.
func Wrap(fn func(rc *plugin_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}

		rc := plugin_io.NewContext(parent, cmd.Name(), plugin_io.Deployment{})
		defer rc.End(&err)
		defer rc.HandlePanic(&err)

		err = fn(rc, cmd, args)
		if err != nil && !plugin_err.IsExpectedUserError(err) && !plugin_err.IsNonRecoverable(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
