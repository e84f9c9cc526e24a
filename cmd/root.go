package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pyquet",
	Short: "Generate synthetic CSV and Parquet datasets from table schemas",
	Long: `pyquet fills a table schema with pseudorandom or catalog values and
writes it as a CSV file or a Hive-partitioned Parquet dataset.

Examples:

  pyquet init
  pyquet generate -s schema.json -t parquet -d out
  pyquet inspect out/t_accounts -s schema.json
`,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(statusCmd)
}
