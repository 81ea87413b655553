package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anoixa/shelf-scanner/api/core"
	"github.com/anoixa/shelf-scanner/config"
	"github.com/anoixa/shelf-scanner/internal/di"
	"github.com/anoixa/shelf-scanner/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	cfg := loadConfig(true)
	logger := utils.Logger()

	logger.Info("Starting shelf-scanner",
		zap.String("version", config.Version),
		zap.String("commit", config.CommitHash),
	)

	container := di.NewContainer(cfg)
	if err := container.Init(); err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	if err := container.GetDatabaseFactory().Migrate(migrateCtx); err != nil {
		cancelMigrate()
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	cancelMigrate()

	deps := &core.ServerDependencies{
		Config:      cfg,
		ScanService: container.GetScanService(),
		Storage:     container.GetStorageFactory().GetDefault(),
	}

	// 启动gin
	server := core.NewServer(deps)
	go func() {
		logger.Info("Server started",
			zap.String("addr", cfg.Addr()),
			zap.String("storage", container.GetStorageFactory().GetDefaultName()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// 关闭 DI 容器
	if err := container.Close(); err != nil {
		logger.Warn("Error closing container", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
