package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rmugicag/pyquet/database"
	"github.com/rmugicag/pyquet/utils"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check catalog database connectivity",
	Long: `Check if the catalog database used by --catalog-query is accessible.

Examples:
  pyquet health                              # Check $CATALOG_DATABASE_URL
  pyquet health --dsn postgres://localhost/db
  pyquet health --timeout 10s                # Set custom timeout
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkDatabaseHealth(); err != nil {
			fmt.Printf("❌ Database health check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Database is healthy and accessible")
	},
}

var (
	healthTimeout time.Duration
	healthDSN     string
)

func init() {
	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 5*time.Second, "Timeout for health check")
	healthCmd.Flags().StringVar(&healthDSN, "dsn", "", "Database to check (default $CATALOG_DATABASE_URL)")
}

func checkDatabaseHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	utils.LoadEnv()
	dsn := healthDSN
	if dsn == "" {
		dsn = utils.GetEnv(utils.EnvCatalogDatabaseURL, "")
	}
	if dsn == "" {
		return fmt.Errorf("no --dsn given and %s not set in environment", utils.EnvCatalogDatabaseURL)
	}

	db, err := database.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}

	driver, _ := database.Driver(dsn)
	fmt.Printf("📊 Driver: %s\n", driver)

	return nil
}
