package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var useYAML bool

const exampleSchemaJSON = `{
  "name": "t_accounts",
  "physicalPath": "data/t_accounts",
  "partitions": ["cutoff_date"],
  "fields": [
    {"name": "account_id", "logicalFormat": "ALPHANUMERIC(12)"},
    {"name": "branch", "logicalFormat": "NUMERIC SHORT"},
    {"name": "balance", "logicalFormat": "DECIMAL(15,2)"},
    {"name": "cutoff_date", "logicalFormat": "DATE"},
    {"name": "audit_date", "logicalFormat": "TIMESTAMP"},
    {"name": "opening_time", "logicalFormat": "TIME"}
  ]
}
`

const exampleCatalogJSON = `{
  "branch": [101, 102, 103],
  "cutoff_date": ["2024-01-31", "2024-02-29", "2024-03-31"]
}
`

const exampleSchemaYAML = `name: t_accounts
physicalPath: data/t_accounts
partitions: [cutoff_date]
fields:
  - name: account_id
    logicalFormat: ALPHANUMERIC(12)
  - name: branch
    logicalFormat: NUMERIC SHORT
  - name: balance
    logicalFormat: DECIMAL(15,2)
  - name: cutoff_date
    logicalFormat: DATE
  - name: audit_date
    logicalFormat: TIMESTAMP
  - name: opening_time
    logicalFormat: TIME
`

const exampleCatalogYAML = `# Values are cycled in order; fields without values are generated.
branch: [101, 102, 103]
cutoff_date: ['2024-01-31', '2024-02-29', '2024-03-31']
`

const examplePlan = `jobs:
  - name: accounts_parquet
    schema: %[1]s
    catalog: %[2]s
    output_type: parquet
    num_rows: 100
  - name: accounts_sample_csv
    schema: %[1]s
    catalog: %[2]s
    output_type: csv
    limit_rows: true
    destination_dir: data/samples
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example schema, catalog and plan",
	Long: `Create an example schema file, catalog file and plan file in the
current directory.

Examples:
  pyquet init          # schema.json and catalog.json
  pyquet init --yaml   # schema.yaml and catalog.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		schemaFile, catalogFile := "schema.json", "catalog.json"
		schemaContent, catalogContent := exampleSchemaJSON, exampleCatalogJSON
		if useYAML {
			schemaFile, catalogFile = "schema.yaml", "catalog.yaml"
			schemaContent, catalogContent = exampleSchemaYAML, exampleCatalogYAML
		}

		files := []struct{ name, content string }{
			{schemaFile, schemaContent},
			{catalogFile, catalogContent},
			{"plan.yaml", fmt.Sprintf(examplePlan, schemaFile, catalogFile)},
		}
		for _, f := range files {
			if _, err := os.Stat(f.name); err == nil {
				fmt.Printf("❌ %s already exists!\n", f.name)
				os.Exit(1)
			}
		}
		for _, f := range files {
			if err := os.WriteFile(f.name, []byte(f.content), 0644); err != nil {
				fmt.Printf("❌ Error creating %s: %v\n", f.name, err)
				os.Exit(1)
			}
			fmt.Printf("✅ Created %s\n", f.name)
		}

		fmt.Printf("📝 Edit %s to describe your table and %s to pin field values\n", schemaFile, catalogFile)
		fmt.Printf("🚀 Run 'pyquet generate -s %s -t parquet -c %s' or 'pyquet run'\n", schemaFile, catalogFile)
	},
}

func init() {
	initCmd.Flags().BoolVar(&useYAML, "yaml", false, "Write YAML files instead of JSON")
}
