package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rmugicag/pyquet/diff"
	"github.com/rmugicag/pyquet/generator"
	"github.com/rmugicag/pyquet/introspect"
	"github.com/rmugicag/pyquet/loader"
	"github.com/spf13/cobra"
)

var (
	inspectSchemaFile string
	inspectFormat     string
)

func init() {
	inspectCmd.Flags().StringVarP(&inspectSchemaFile, "schema-path", "s", "", "Schema file to compare the dataset with")
	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "text", "Output format (text, json)")
}

var inspectCmd = &cobra.Command{
	Use:   "inspect PATH",
	Short: "Show the columns of a generated dataset",
	Long: `Read a CSV file or Parquet dataset and print its columns and row count.

With --schema-path the dataset is compared with the schema a generate run
would write: missing, extra and mistyped columns are reported. CSV column
types are inferred from the text.

Examples:
  pyquet inspect out/t_accounts
  pyquet inspect out/t_accounts.csv -s schema.json
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ds, err := introspect.ReadDataset(args[0])
		if err != nil {
			fmt.Println("❌ Reading dataset:", err)
			os.Exit(1)
		}

		var ops []diff.Operation
		if inspectSchemaFile != "" {
			def, err := loader.LoadSchema(inspectSchemaFile)
			if err != nil {
				fmt.Println("❌ Loading schema:", err)
				os.Exit(1)
			}
			expected, err := generator.OutputSchema(def)
			if err != nil {
				fmt.Println("❌ Reading schema formats:", err)
				os.Exit(1)
			}
			ops = diff.DiffSchemas(expected, ds)
		}

		if inspectFormat == "json" {
			if err := outputJSON(map[string]any{"dataset": ds, "differences": ops}); err != nil {
				fmt.Println("❌ Writing JSON:", err)
				os.Exit(1)
			}
		} else {
			printDataset(ds)
			if inspectSchemaFile != "" {
				printDifferences(ops)
			}
		}

		if diff.HasDifferences(ops) {
			os.Exit(1)
		}
	},
}

func printDataset(ds *introspect.Dataset) {
	fmt.Printf("📦 %s (%s)\n", ds.Path, ds.Format)
	fmt.Printf("  • Files: %d\n", len(ds.Files))
	fmt.Printf("  • Rows: %d\n", ds.RowCount)
	fmt.Printf("\n📋 Columns (%d):\n", len(ds.Columns))
	for _, c := range ds.Columns {
		note := ""
		switch {
		case c.Partition:
			note = fmt.Sprintf(" (partition, %d values)", len(ds.PartitionValues[c.Name]))
		case c.Inferred:
			note = " (inferred)"
		}
		typ := c.Type.String()
		if c.Inferred && typ == "invalid" {
			typ = "unknown"
		}
		fmt.Printf("  - %s: %s%s\n", c.Name, typ, note)
	}
}

func printDifferences(ops []diff.Operation) {
	fmt.Println()
	if !diff.HasDifferences(ops) {
		color.Green("✅ Dataset matches the schema.")
	} else {
		color.Red("❌ Dataset differs from the schema:")
	}
	for _, op := range ops {
		icon := "🔴"
		if op.Type == diff.PartitionColumn {
			icon = "🔵"
		}
		fmt.Printf("  %s %s\n", icon, op)
	}
}
