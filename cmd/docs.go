package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmugicag/pyquet/generator"
	"github.com/rmugicag/pyquet/loader"
	"github.com/rmugicag/pyquet/schema"
	"github.com/rmugicag/pyquet/table"
)

var (
	docsFormat string
	docsOutput string
)

var docsCmd = &cobra.Command{
	Use:   "docs SCHEMA...",
	Short: "Generate documentation from schema files",
	Long: `Generate documentation for one or more schema files.

Supported formats:
  - markdown: field table with logical format, output type and an example value
  - mermaid: Mermaid diagram with one entity per schema

Examples:
  pyquet docs schema.json
  pyquet docs --format mermaid --output tables.md schemas/*.json
`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		defs := make([]schema.Definition, 0, len(args))
		for _, path := range args {
			def, err := loader.LoadSchema(path)
			if err != nil {
				fmt.Printf("❌ Error loading schema %s: %v\n", path, err)
				os.Exit(1)
			}
			defs = append(defs, def)
		}

		var content string
		var err error
		switch docsFormat {
		case "markdown":
			content, err = generateMarkdownContent(defs)
		case "mermaid":
			content = generateMermaidContent(defs)
		default:
			fmt.Printf("❌ Unsupported format: %s\n", docsFormat)
			fmt.Println("Supported formats: markdown, mermaid")
			os.Exit(1)
		}
		if err != nil {
			fmt.Printf("❌ Error generating documentation: %v\n", err)
			os.Exit(1)
		}

		if docsOutput == "" {
			fmt.Print(content)
			return
		}
		if err := os.WriteFile(docsOutput, []byte(content), 0644); err != nil {
			fmt.Printf("❌ Error writing %s: %v\n", docsOutput, err)
			os.Exit(1)
		}
		fmt.Printf("✅ Documentation saved to: %s\n", docsOutput)
	},
}

func generateMarkdownContent(defs []schema.Definition) (string, error) {
	var content strings.Builder

	for _, def := range defs {
		g := generator.New(generator.Config{NumRows: 1, Logf: func(string, ...any) {}})
		res, err := g.Generate(def, generator.Request{})
		if err != nil {
			return "", fmt.Errorf("%s: %w", def.Name, err)
		}

		content.WriteString(fmt.Sprintf("## %s\n\n", def.Name))
		if def.PhysicalPath != "" {
			content.WriteString(fmt.Sprintf("Physical path: `%s`\n\n", def.PhysicalPath))
		}
		if len(def.Partitions) > 0 {
			content.WriteString(fmt.Sprintf("Partitioned by: %s\n\n", strings.Join(def.Partitions, ", ")))
		}

		content.WriteString("| Field | Logical format | Type | Example |\n")
		content.WriteString("|---|---|---|---|\n")
		for _, f := range def.Fields {
			typ, example := "skipped", ""
			if col, ok := res.Table.Column(f.Name); ok {
				typ = col.Type.String()
				example = exampleValue(col.Values[0], col.Type)
			}
			content.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", f.Name, f.LogicalFormat, typ, example))
		}
		content.WriteString("\n")
	}

	return content.String(), nil
}

func exampleValue(v any, pt schema.PhysicalType) string {
	t, ok := v.(time.Time)
	if !ok {
		return fmt.Sprint(v)
	}
	switch pt.ID {
	case schema.Date32ID:
		return t.Format(table.DateLayout)
	case schema.Time32MillisID:
		return t.Format(table.TimeLayout)
	}
	return t.Format(table.TimestampLayout)
}

func generateMermaidContent(defs []schema.Definition) string {
	var content strings.Builder

	content.WriteString("```mermaid\nerDiagram\n")
	for _, def := range defs {
		content.WriteString(fmt.Sprintf("    %s {\n", def.Name))
		for _, f := range def.Fields {
			format, err := schema.ParseFormat(f.LogicalFormat)
			pt, ok := format.PhysicalType()
			if err != nil || !ok {
				continue
			}
			displayType := strings.ToUpper(strings.NewReplacer("(", "_", ")", "", ", ", "_", "[", "_", "]", "").Replace(pt.String()))
			line := fmt.Sprintf("        %s %s", displayType, f.Name)
			for _, p := range def.Partitions {
				if p == f.Name {
					line += " PK"
				}
			}
			content.WriteString(line + "\n")
		}
		content.WriteString("    }\n")
	}
	content.WriteString("```\n")
	return content.String()
}

func init() {
	docsCmd.Flags().StringVarP(&docsFormat, "format", "f", "markdown", "Output format (markdown, mermaid)")
	docsCmd.Flags().StringVarP(&docsOutput, "output", "o", "", "Output file (default: stdout)")
}
