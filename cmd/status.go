package cmd

import (
	"fmt"
	"os"

	"github.com/rmugicag/pyquet/runner"
	"github.com/rmugicag/pyquet/utils"
	"github.com/spf13/cobra"
)

var statusPlanFile string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which jobs of a plan have output on disk",
	Run: func(cmd *cobra.Command, args []string) {
		utils.LoadEnv()

		plan, err := runner.LoadPlan(statusPlanFile)
		if err != nil {
			fmt.Println("❌ Status error:", err)
			os.Exit(1)
		}

		var generated, pending, failed []runner.JobStatus
		for _, st := range runner.Status(plan, defaultRunOptions()) {
			switch {
			case st.Err != nil:
				failed = append(failed, st)
			case st.Exists:
				generated = append(generated, st)
			default:
				pending = append(pending, st)
			}
		}

		fmt.Println("✅ Generated:")
		for _, st := range generated {
			fmt.Printf("   - %s: %s\n", st.Name, st.Path)
		}

		if len(failed) > 0 {
			fmt.Println("\n❌ Invalid jobs:")
			for _, st := range failed {
				fmt.Printf("   - %s: %v\n", st.Name, st.Err)
			}
		}

		fmt.Println("\n🕒 Pending:")
		for _, st := range pending {
			fmt.Printf("   - %s: %s\n", st.Name, st.Path)
		}
	},
}

func init() {
	statusCmd.Flags().StringVarP(&statusPlanFile, "file", "f", "plan.yaml", "Plan file to check")
}
