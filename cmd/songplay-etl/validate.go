package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/turbot/pipe-fittings/cmdconfig"
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [flags]",
		Short: "Validate a config file",
		Run:   runValidateCmd,
	}
	cmdconfig.OnCmd(cmd).
		AddStringFlag(flagConfig, "", "Path to the HCL config file")
	return cmd
}

func runValidateCmd(*cobra.Command, []string) {
	path := viper.GetString(flagConfig)
	if path == "" {
		fmt.Fprintln(os.Stderr, "Error: --config must be specified")
		exitCode = 1
		return
	}
	cfg, err := loadConfig(path)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		exitCode = 1
		return
	}
	fmt.Printf("%s is valid\n", path)
}
