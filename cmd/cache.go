package cmd

import (
	"context"
	"fmt"

	"github.com/anoixa/shelf-scanner/cache"
	"github.com/anoixa/shelf-scanner/utils"
	"github.com/anoixa/shelf-scanner/utils/validator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cacheCmd 缓存管理命令
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache management commands",
	Long:  "Manage the shared latest-scan cache.",
}

// cacheClearCmd 清除设备的最近扫描缓存
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the cached latest scan of a device",
	Long: `Clear the cached latest scan of a device. Only meaningful with the redis
cache, the in-process cache lives and dies with the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deviceID, _ := cmd.Flags().GetString("device")
		return runCacheClear(cmd.Context(), deviceID)
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheClearCmd.Flags().String("device", "", "Device id whose cache entries are removed")
	_ = cacheClearCmd.MarkFlagRequired("device")
}

// runCacheClear 执行缓存清理
func runCacheClear(ctx context.Context, deviceID string) error {
	if err := validator.ValidateDeviceID(deviceID); err != nil {
		return err
	}

	cfg := loadConfig(false)

	factory, err := cache.NewFactory(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer func() { _ = factory.Close() }()

	helper := cache.NewHelper(factory.GetProvider(), cfg.CacheLatestScanTTL)
	if err := helper.DeleteCachedLatestScan(ctx, deviceID); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	if err := helper.DeleteNoScansMarker(ctx, deviceID); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	utils.Logger().Info("Cache cleared",
		zap.String("device_id", deviceID),
		zap.String("cache", factory.GetProvider().Name()),
	)
	return nil
}
