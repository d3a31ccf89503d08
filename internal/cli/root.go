package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const releaseVersion = "0.4.0"

var (
	port       string
	configPath string
	verbose    bool
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TUGWAR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:          "fraction-tug",
		Short:        "Fraction tug-of-war classroom game served over WebSocket",
		Version:      releaseVersion,
		SilenceUsage: true,
	}

	fs := cmd.PersistentFlags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&port, "port", "", "port to listen on, overrides the config file (env: TUGWAR_PORT)")
	fs.StringVar(&configPath, "config", "config/config.yaml", "path to YAML config (env: TUGWAR_CONFIG)")
	fs.BoolVarP(&verbose, "verbose", "v", false, "log every match action (env: TUGWAR_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetVersionTemplate("fraction-tug v{{.Version}}\n")

	cmd.AddCommand(NewStartCmd(&configPath, &port, &verbose))
	cmd.AddCommand(NewProblemsCmd())
	return cmd
}
