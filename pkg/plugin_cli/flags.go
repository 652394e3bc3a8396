// pkg/plugin_cli/flags.go

package plugin_cli

import (
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AddStringFlag adds a string flag. Env and config values are handled by
// viper once BindFlagsToViper has run.
func AddStringFlag(flags *pflag.FlagSet, name, def, help string) {
	flags.String(name, def, help)
}

// AddBoolFlag adds a boolean flag.
func AddBoolFlag(flags *pflag.FlagSet, name string, def bool, help string) {
	flags.Bool(name, def, help)
}

// AddIntFlag adds an int flag.
func AddIntFlag(flags *pflag.FlagSet, name string, def int, help string) {
	flags.Int(name, def, help)
}

// AddDurationFlag adds a duration flag.
func AddDurationFlag(flags *pflag.FlagSet, name string, def time.Duration, help string) {
	flags.Duration(name, def, help)
}

// FlagKey maps a flag name to its settings key: "temp-dir" -> "temp_dir".
func FlagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// BindFlagsToViper binds all flags on a command, including inherited
// persistent flags, to a Viper instance under their settings keys.
func BindFlagsToViper(cmd *cobra.Command, v *viper.Viper, skip ...string) error {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}

	var result error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if skipped[f.Name] {
			return
		}
		if err := v.BindPFlag(FlagKey(f.Name), f); err != nil {
			result = multierror.Append(result, err)
		}
	})
	return result
}

// GetStringOrEmpty returns the string value or empty string if the flag is missing.
func GetStringOrEmpty(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return val
}
