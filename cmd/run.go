package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go-reactor/pkg/metrics"
	"go-reactor/pkg/stream"
	"go-reactor/pkg/training"
)

func newRunCmd(vp *viper.Viper) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [scenario|group]...",
		Short: "Run scenarios, all of them by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd, vp, args)
		},
	}

	flags := runCmd.Flags()
	flags.Int(keyWorkers, 4, "Number of scenarios running at once")
	flags.Duration(keyTimeout, 30*time.Second, "Verification timeout of a single scenario")
	flags.Float64(keyTimeScale, 1, "Multiplier applied to every scenario duration")
	flags.Bool(keyMetrics, false, "Print the engine metrics after the run")
	bindFlags(vp, flags)

	return runCmd
}

func runScenarios(cmd *cobra.Command, vp *viper.Viper, args []string) error {
	scenarios := training.All()
	if len(args) > 0 {
		var err error
		if scenarios, err = training.Lookup(args...); err != nil {
			return err
		}
	}

	env := training.DefaultEnv()
	env.Scale = vp.GetFloat64(keyTimeScale)
	env.Timeout = vp.GetDuration(keyTimeout)

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stream.ShutdownDefaultSchedulers(ctx); err != nil {
			log.WithError(err).Warning("Unable to shut down schedulers")
		}
	}()

	runner := training.NewRunner(vp.GetInt(keyWorkers), env)
	results, runErr := runner.Run(cmd.Context(), scenarios)

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		status := "PASS"
		if r.Err != nil {
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", status, r.Scenario.ID(), r.Duration.Round(time.Millisecond))
	}
	if len(results) > 0 {
		fmt.Fprintf(out, "%d passed, %d failed\n", len(results)-failed, failed)
	}

	if vp.GetBool(keyMetrics) {
		if err := metrics.Dump(out, metrics.Registry); err != nil {
			return err
		}
	}
	return runErr
}
