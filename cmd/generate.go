package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rmugicag/pyquet/database"
	"github.com/rmugicag/pyquet/generator"
	"github.com/rmugicag/pyquet/runner"
	"github.com/rmugicag/pyquet/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	schemaPath      string
	outputType      string
	destinationDir  string
	destinationPath string
	partitionsFlag  string
	catalogPath     string
	numRows         int
	limitRows       bool
	fixedValuesFlag string
	catalogQuery    string
	catalogDSN      string
)

func init() {
	generateCmd.Flags().StringVarP(&schemaPath, "schema-path", "s", "", "Path to the schema file")
	generateCmd.Flags().StringVarP(&outputType, "output-type", "t", "", "Output type, parquet or csv")
	generateCmd.Flags().StringVarP(&destinationDir, "destination-dir", "d", "", "Destination directory (default $PYQUET_DESTINATION_DIR)")
	generateCmd.Flags().StringVarP(&destinationPath, "destination-path", "o", "", "Exact destination path, overrides the directory")
	generateCmd.Flags().StringVarP(&partitionsFlag, "partitions", "p", "", "Comma separated partition columns (default from the schema)")
	generateCmd.Flags().StringVarP(&catalogPath, "catalog-path", "c", "", "Catalog file")
	generateCmd.Flags().IntVarP(&numRows, "num-rows", "r", 0, "Number of rows (default $PYQUET_NUM_ROWS or 10)")
	generateCmd.Flags().BoolVarP(&limitRows, "limit-rows", "l", false, "Size the output to the longest catalog field")
	generateCmd.Flags().StringVarP(&fixedValuesFlag, "fixed-values", "v", "", "Inline mapping of field to values, laid over the catalog")
	generateCmd.Flags().StringVar(&catalogQuery, "catalog-query", "", "SQL query whose columns are added to the catalog")
	generateCmd.Flags().StringVar(&catalogDSN, "catalog-dsn", "", "Database for --catalog-query (default $CATALOG_DATABASE_URL)")
	_ = generateCmd.MarkFlagRequired("schema-path")
	_ = generateCmd.MarkFlagRequired("output-type")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a dataset from a schema file",
	Long: `Generate a table from a schema file and write it as CSV or Parquet.

Fields take their values from the catalog when it has them, otherwise they
are generated. Parquet output is partitioned by the given columns.

Examples:
  pyquet generate -s schema.json -t csv -d out
  pyquet generate -s schema.json -t parquet -p cutoff_date -c catalog.json -l
  pyquet generate -s schema.json -t csv -v "{'code': ['A', 'B']}"
  pyquet generate -s schema.json -t csv --catalog-query "SELECT code FROM codes"
`,
	Run: func(cmd *cobra.Command, args []string) {
		utils.LoadEnv()
		defer database.Close()

		job := runner.Job{
			Schema:          schemaPath,
			OutputType:      outputType,
			DestinationPath: destinationPath,
			DestinationDir:  destinationDir,
			Catalog:         catalogPath,
			CatalogQuery:    catalogQuery,
			CatalogDSN:      catalogDSN,
			NumRows:         numRows,
			LimitRows:       limitRows,
			Partitions:      splitList(partitionsFlag),
		}
		if fixedValuesFlag != "" {
			job.FixedValues = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fixedValuesFlag}
		}

		res := runner.RunJob(context.Background(), job, defaultRunOptions())
		if res.Err != nil {
			fmt.Println("❌ Generating data:", res.Err)
			os.Exit(1)
		}
		if res.Written {
			fmt.Printf("✅ Generated %d rows: %s\n", res.Rows, res.Path)
		}
	},
}

// defaultRunOptions reads the defaults the environment provides
func defaultRunOptions() runner.Options {
	return runner.Options{
		DefaultNumRows:        utils.GetEnvInt(utils.EnvNumRows, generator.DefaultNumRows),
		DefaultDestinationDir: utils.GetEnv(utils.EnvDestinationDir, ""),
	}
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
