package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"FlowMonReport/internal/config"
	"FlowMonReport/internal/logging"
	"FlowMonReport/internal/report"

	"github.com/apex/log"
	"github.com/spf13/cobra"
)

const (
	flagConfig   = "config"
	flagSchema   = "schema"
	flagStrict   = "strict"
	flagFailFast = "fail-fast"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Logger.WithError(err).Error("flow-report failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flow-report",
		Short: "Aggregate ns-3 FlowMonitor traces of the working directory into results.csv",
		Long: `flow-report reads every .flowmonitor file of the configured directory,
derives the experiment parameters from the file name, aggregates the recorded
flows and writes one row per file to results.csv.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	cmd.Flags().String(flagConfig, "configs/config.yaml", "path of the YAML config file, defaults apply when it does not exist")
	cmd.Flags().String(flagSchema, "", "file name schema: node-flow-rate (A), algorithm-node-error-rate (B) or coverage")
	cmd.Flags().Bool(flagStrict, true, "sum every in-scope flow; --strict=false skips flows that received nothing")
	cmd.Flags().Bool(flagFailFast, false, "abort on the first file that cannot be processed")
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString(flagConfig)
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep, err := report.Run(ctx, cfg)
	if err != nil {
		return err
	}
	logging.Logger.WithFields(log.Fields{
		"rows":    len(rep.Rows),
		"skipped": len(rep.Skipped),
	}).Info("done")
	return nil
}

// applyFlags overrides the config with the flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed(flagSchema) {
		cfg.Report.Schema, _ = flags.GetString(flagSchema)
	}
	if flags.Changed(flagStrict) {
		strict, _ := flags.GetBool(flagStrict)
		cfg.Aggregator.Policy = config.PolicyFiltered
		if strict {
			cfg.Aggregator.Policy = config.PolicyStrict
		}
	}
	if flags.Changed(flagFailFast) {
		cfg.Report.FailFast, _ = flags.GetBool(flagFailFast)
	}
	return cfg.Validate()
}
