package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/anoixa/shelf-scanner/internal/di"
	"github.com/anoixa/shelf-scanner/storage"
	"github.com/anoixa/shelf-scanner/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// setupBucketCmd 创建公开存储桶，可重复执行
var setupBucketCmd = &cobra.Command{
	Use:   "setup-bucket",
	Short: "Create the public upload bucket",
	Long: `Create the upload bucket with public read access, the upload size limit
and the image MIME allow-list. Running it against an existing bucket is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetupBucket(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(setupBucketCmd)
}

func runSetupBucket(ctx context.Context) error {
	cfg := loadConfig(true)

	container := di.NewContainer(cfg)
	if err := container.InitStorage(); err != nil {
		return err
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	provider := container.GetStorageFactory().GetDefault()
	return setupBucket(ctx, provider, storage.BucketOptionsFromConfig(cfg))
}

// setupBucket 已存在视为成功
func setupBucket(ctx context.Context, provider storage.Provider, opts storage.BucketOptions) error {
	created, err := provider.EnsureBucket(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", provider.Bucket(), err)
	}

	logger := utils.Logger().With(
		zap.String("bucket", provider.Bucket()),
		zap.String("storage", provider.Name()),
	)
	if created {
		logger.Info("Bucket created",
			zap.Bool("public", opts.Public),
			zap.Int64("file_size_limit", opts.FileSizeLimit),
			zap.Strings("allowed_mime_types", opts.AllowedMimeTypes),
		)
	} else {
		logger.Info("Bucket already exists")
	}
	return nil
}
