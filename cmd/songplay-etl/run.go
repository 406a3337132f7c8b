package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/turbot/pipe-fittings/cmdconfig"

	"github.com/turbot/songplay-etl/config"
	"github.com/turbot/songplay-etl/metrics"
	"github.com/turbot/songplay-etl/pipeline"
)

const (
	flagConfig       = "config"
	flagInputRoot    = "input-root"
	flagOutputRoot   = "output-root"
	flagOutputFormat = "output-format"
	flagMetricsFile  = "metrics-file"
	flagSongsOnly    = "songs-only"
	flagLogsOnly     = "logs-only"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags]",
		Short: "Run the pipeline",
		Run:   runRunCmd,
	}

	cmdconfig.OnCmd(cmd).
		AddStringFlag(flagConfig, "", "Path to the HCL config file").
		AddStringFlag(flagInputRoot, "", "Input root, overriding input_root (path, s3://bucket/prefix or gs://bucket/prefix)").
		AddStringFlag(flagOutputRoot, "", "Output root, overriding output_root").
		AddStringFlag(flagOutputFormat, "", "Output format, overriding output_format (parquet or jsonl)").
		AddStringFlag(flagMetricsFile, "", "Write prometheus metrics to this file when the run completes")

	cmd.Flags().Bool(flagSongsOnly, false, "Only process the song catalog (songs and artists tables)")
	cmd.Flags().Bool(flagLogsOnly, false, "Only process the activity log (users, time and songplays tables)")
	viper.BindPFlag(flagSongsOnly, cmd.Flags().Lookup(flagSongsOnly))
	viper.BindPFlag(flagLogsOnly, cmd.Flags().Lookup(flagLogsOnly))

	return cmd
}

func runRunCmd(cmd *cobra.Command, _ []string) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := doRun(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		exitCode = 1
	}
}

func doRun(ctx context.Context) error {
	cfg, err := loadConfig(viper.GetString(flagConfig))
	if err != nil {
		return err
	}
	if v := viper.GetString(flagInputRoot); v != "" {
		cfg.InputRoot = v
	}
	if v := viper.GetString(flagOutputRoot); v != "" {
		cfg.OutputRoot = v
	}
	if v := viper.GetString(flagOutputFormat); v != "" {
		cfg.OutputFormat = v
	}
	if v := viper.GetString(flagMetricsFile); v != "" {
		cfg.MetricsFile = &v
	}

	songsOnly, logsOnly := viper.GetBool(flagSongsOnly), viper.GetBool(flagLogsOnly)
	if songsOnly && logsOnly {
		return fmt.Errorf("--%s and --%s cannot be used together", flagSongsOnly, flagLogsOnly)
	}

	metricsObserver := metrics.NewObserver()
	opts := []pipeline.Option{
		pipeline.WithObservers(pipeline.NewLoggingObserver(nil), metricsObserver),
	}
	switch {
	case songsOnly:
		opts = append(opts, pipeline.WithPhases(pipeline.PhaseSongs))
	case logsOnly:
		opts = append(opts, pipeline.WithPhases(pipeline.PhaseLogs))
	}

	p, err := pipeline.New(cfg, opts...)
	if err != nil {
		return err
	}
	res, runErr := p.Run(ctx)

	if cfg.MetricsFile != nil {
		if err := metricsObserver.WriteToTextfile(*cfg.MetricsFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", err.Error())
		}
	}
	if runErr != nil {
		return runErr
	}

	fmt.Printf("Execution %s complete, %d files written\n", res.ExecutionId, res.FilesWritten())
	for _, table := range []string{"songs", "artists", "users", "time", "songplays"} {
		if rows, ok := res.RowCounts[table]; ok {
			fmt.Printf("  %-10s %d rows\n", table, rows)
		}
	}
	fmt.Print(res.Timing.String())
	return nil
}

// loadConfig loads the config file, or returns the default config if path is empty
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
