package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/anoixa/shelf-scanner/internal/di"
	"github.com/anoixa/shelf-scanner/utils"
	"github.com/spf13/cobra"
)

// migrateCmd 数据库迁移命令
var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down]",
	Short: "Apply or roll back database migrations",
	Long: `Apply pending versioned migrations (up, the default) or roll back the
most recent one (down). --to stops "up" at the given migration id.

Examples:
  shelf-scanner migrate
  shelf-scanner migrate up --to 20261019-0001
  shelf-scanner migrate down --config /etc/shelf-scanner/.env`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := "up"
		if len(args) == 1 {
			direction = args[0]
		}
		target, _ := cmd.Flags().GetString("to")
		return runMigrate(cmd.Context(), direction, target)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().String("to", "", "Migrate up to and including this migration id")
}

func runMigrate(ctx context.Context, direction, target string) error {
	if direction != "up" && direction != "down" {
		return fmt.Errorf("unknown migration direction %q (want up or down)", direction)
	}
	if direction == "down" && target != "" {
		return fmt.Errorf("--to only applies to migrate up")
	}

	cfg := loadConfig(false)

	container := di.NewContainer(cfg)
	if err := container.InitDatabase(); err != nil {
		return err
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	factory := container.GetDatabaseFactory()
	if direction == "down" {
		if err := factory.Rollback(ctx); err != nil {
			return err
		}
		utils.Logger().Info("Rolled back last migration")
		return nil
	}
	if target != "" {
		return factory.MigrateTo(ctx, target)
	}
	return factory.Migrate(ctx)
}
