package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/turbot/pipe-fittings/cmdconfig"

	"github.com/turbot/songplay-etl/schema"
	"github.com/turbot/songplay-etl/tables"
)

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the columns and parquet types of every output table",
		Run:   runSchemaCmd,
	}
	cmdconfig.OnCmd(cmd)
	return cmd
}

func runSchemaCmd(*cobra.Command, []string) {
	schemas, err := schema.TableSchemas()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		exitCode = 1
		return
	}
	for _, t := range tables.All() {
		s := schemas[t.Name]
		fmt.Print(s.String())
		if len(t.DefaultPartitionBy) > 0 {
			fmt.Printf("  partitioned by %v\n", t.DefaultPartitionBy)
		}
		fmt.Println()
	}
}
