package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rmugicag/pyquet/database"
	"github.com/rmugicag/pyquet/runner"
	"github.com/rmugicag/pyquet/utils"
	"github.com/spf13/cobra"
)

var (
	planFile        string
	continueOnError bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every generation job of a plan file",
	Long: `Run the jobs of a plan file in order. Paths in the plan are relative
to the plan file.

Example plan:

  jobs:
    - name: accounts
      schema: schema.json
      output_type: parquet
      catalog: catalog.json
      limit_rows: true
      destination_dir: out

Examples:
  pyquet run -f plan.yaml
  pyquet run -f plan.yaml --continue-on-error
`,
	Run: func(cmd *cobra.Command, args []string) {
		utils.LoadEnv()
		defer database.Close()

		plan, err := runner.LoadPlan(planFile)
		if err != nil {
			fmt.Println("❌ Loading plan:", err)
			os.Exit(1)
		}

		opts := defaultRunOptions()
		opts.ContinueOnError = continueOnError
		results, err := runner.Run(context.Background(), plan, opts)
		if err != nil {
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
				}
			}
			color.Red("❌ %d of %d job(s) failed", failed, len(plan.Jobs))
			os.Exit(1)
		}
	},
}

func init() {
	runCmd.Flags().StringVarP(&planFile, "file", "f", "plan.yaml", "Plan file to run")
	runCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Keep running the remaining jobs after a failure")
}
