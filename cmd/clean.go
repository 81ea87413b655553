package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/anoixa/shelf-scanner/internal/di"
	"github.com/anoixa/shelf-scanner/internal/services/scan"
	"github.com/anoixa/shelf-scanner/utils"
	"github.com/anoixa/shelf-scanner/utils/format"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cleanCmd 回收没有扫描记录引用的对象
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete stored objects that no scan references",
	Long: `Delete stored objects that no scan references.
Uploads write the object before the scan row; when the row insert fails the
object is left behind. Objects younger than --older-than are never touched so
in-flight uploads stay safe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		olderThan, _ := cmd.Flags().GetDuration("older-than")
		return runClean(cmd.Context(), olderThan, dryRun)
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().Bool("dry-run", false, "Only show what would be cleaned, don't actually delete")
	cleanCmd.Flags().Duration("older-than", scan.DefaultOrphanGrace, "Only consider objects uploaded before this long ago")
}

// runClean 执行清理
func runClean(ctx context.Context, olderThan time.Duration, dryRun bool) error {
	cfg := loadConfig(true)

	container := di.NewContainer(cfg)
	if err := container.InitDatabase(); err != nil {
		return err
	}
	if err := container.InitStorage(); err != nil {
		return err
	}
	defer container.Close()

	cleaner := scan.NewOrphanCleaner(
		container.GetStorageFactory().GetDefault(),
		container.GetRepositories().Scans,
		olderThan,
		dryRun,
	)

	stats, err := cleaner.Run(ctx)
	printCleanStats(stats, dryRun)
	if err != nil {
		return fmt.Errorf("clean failed: %w", err)
	}
	if stats.Failed > 0 {
		return fmt.Errorf("failed to delete %d object(s)", stats.Failed)
	}
	return nil
}

func printCleanStats(stats scan.CleanStats, dryRun bool) {
	utils.Logger().Info("Clean finished",
		zap.Bool("dry_run", dryRun),
		zap.Int("scanned", stats.Scanned),
		zap.Int("skipped_recent", stats.Skipped),
		zap.Int("orphans", stats.Orphans),
		zap.Int("deleted", stats.Deleted),
		zap.Int("failed", stats.Failed),
		zap.String("freed", format.HumanReadableSize(stats.FreedBytes)),
	)
}
