// Package cmd implements the reactor command line.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"go-reactor/pkg/logging"
	"go-reactor/pkg/logging/logfields"
)

const envPrefix = "reactor"

const (
	keyLogLevel  = "log-level"
	keyLogFormat = "log-format"
	keyWorkers   = "workers"
	keyTimeout   = "timeout"
	keyTimeScale = "time-scale"
	keyMetrics   = "metrics"
)

var log = logging.DefaultLogger.WithField(logfields.LogSubsys, "cmd")

// New creates the reactor root command.
func New() *cobra.Command {
	vp := newViper()

	rootCmd := &cobra.Command{
		Use:          "reactor",
		Short:        "reactor runs the stream engine training scenarios",
		Long:         "reactor bootstraps the stream engine and runs its training scenarios, verifying the output of each.",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := logging.SetLogFormat(vp.GetString(keyLogFormat)); err != nil {
				return err
			}
			return logging.SetLogLevelFromString(vp.GetString(keyLogLevel))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(keyLogLevel, "info", "Log level (debug, info, warning, error)")
	flags.String(keyLogFormat, "text", "Log format (text, json)")
	bindFlags(vp, flags)

	rootCmd.AddCommand(
		newListCmd(),
		newRunCmd(vp),
	)
	return rootCmd
}

func newViper() *viper.Viper {
	vp := viper.New()
	vp.SetEnvPrefix(envPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vp.AutomaticEnv()
	return vp
}

func bindFlags(vp *viper.Viper, flags *pflag.FlagSet) {
	if err := vp.BindPFlags(flags); err != nil {
		log.WithError(err).Fatal("Unable to bind flags")
	}
}
