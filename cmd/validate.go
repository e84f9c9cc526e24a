package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rmugicag/pyquet/catalog"
	"github.com/rmugicag/pyquet/loader"
	"github.com/rmugicag/pyquet/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a schema file, its partitions and catalog",
	Long: `Validate a schema file before generating data.

This command checks:
- Logical formats (malformed parameters, unrecognized formats)
- Field names (empty, duplicated, unsafe for partition directories)
- Partition columns (present in the schema and generated)
- Catalog values (coercible to the field's output type)

Examples:
  pyquet validate -s schema.json
  pyquet validate -s schema.json -p cutoff_date -c catalog.json
  pyquet validate -s schema.json --format json
`,
	Run: func(cmd *cobra.Command, args []string) {
		valid, err := validateSchema()
		if err != nil {
			fmt.Printf("❌ Schema validation failed: %v\n", err)
			os.Exit(1)
		}
		if !valid {
			os.Exit(1)
		}
	},
}

var (
	validateSchemaFile  string
	validatePartitions  string
	validateCatalogFile string
	validateFixedValues string
	validateFormat      string
)

func init() {
	validateCmd.Flags().StringVarP(&validateSchemaFile, "schema-path", "s", "schema.json", "Schema file to validate")
	validateCmd.Flags().StringVarP(&validatePartitions, "partitions", "p", "", "Comma separated partition columns (default from the schema)")
	validateCmd.Flags().StringVarP(&validateCatalogFile, "catalog-path", "c", "", "Catalog file to check against the schema")
	validateCmd.Flags().StringVarP(&validateFixedValues, "fixed-values", "v", "", "Inline fixed values to check with the catalog")
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")
}

func validateSchema() (bool, error) {
	def, err := loader.LoadSchema(validateSchemaFile)
	if err != nil {
		return false, fmt.Errorf("failed to load schema: %w", err)
	}

	cat := catalog.Catalog{}
	if validateCatalogFile != "" {
		if cat, err = loader.LoadCatalog(validateCatalogFile); err != nil {
			return false, fmt.Errorf("failed to load catalog: %w", err)
		}
	}
	if validateFixedValues != "" {
		fixed, err := loader.ParseFixedValues(validateFixedValues)
		if err != nil {
			return false, fmt.Errorf("failed to parse fixed values: %w", err)
		}
		cat = cat.Merge(fixed)
	}

	partitions := splitList(validatePartitions)
	if partitions == nil {
		partitions = def.Partitions
	}

	result := validator.ValidateDefinition(def, partitions, cat)
	if validateFormat == "json" {
		return result.Valid, outputJSON(result)
	}
	outputText(result)
	return result.Valid, nil
}

func outputJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printFindings(icon, title string, list []validator.ValidationError) {
	if len(list) == 0 {
		return
	}
	fmt.Printf("\n%s %s (%d):\n", icon, title, len(list))
	for i, e := range list {
		fmt.Printf("  %d. ", i+1)
		if e.Table != "" {
			fmt.Printf("[%s]", e.Table)
		}
		if e.Column != "" {
			fmt.Printf(".%s", e.Column)
		}
		fmt.Printf(": %s\n", e.Message)
	}
}

func outputText(result *validator.ValidationResult) {
	if result.Valid {
		color.Green("✅ Schema validation passed!")
	} else {
		color.Red("❌ Schema validation failed!")
	}

	printFindings("🔴", "Errors", result.Errors)
	printFindings("🟡", "Warnings", result.Warnings)
	printFindings("🔵", "Info", result.Info)

	fmt.Printf("\n📊 Summary:\n")
	fmt.Printf("  • Errors: %d\n", len(result.Errors))
	fmt.Printf("  • Warnings: %d\n", len(result.Warnings))
	fmt.Printf("  • Info: %d\n", len(result.Info))

	if result.Valid {
		fmt.Printf("\n🎉 Your schema is valid and ready for data generation!\n")
	} else {
		fmt.Printf("\n💡 Fix the errors above before generating data.\n")
	}
}
