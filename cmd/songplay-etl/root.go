package main

import (
	"github.com/spf13/cobra"
	"github.com/turbot/pipe-fittings/cmdconfig"
	"github.com/turbot/pipe-fittings/error_helpers"
)

var exitCode int

// Build the cobra command that handles our command line tool.
func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "songplay-etl COMMAND [args]",
		Short: "Transform song catalog and activity logs into star schema parquet tables",
		Run: func(cmd *cobra.Command, args []string) {
			err := cmd.Help()
			error_helpers.FailOnError(err)
		},
	}

	cmdconfig.
		OnCmd(rootCmd)

	rootCmd.AddCommand(
		runCmd(),
		schemaCmd(),
		validateCmd(),
	)

	return rootCmd
}

func Execute() int {
	rootCmd := rootCommand()
	if err := rootCmd.Execute(); err != nil {
		exitCode = 1
	}
	return exitCode
}
