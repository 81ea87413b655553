package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/anoixa/shelf-scanner/internal/client"
	"github.com/spf13/cobra"
)

// scanCmd 客户端上传
var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Upload a bookshelf photo to the server",
	Long: `Upload a bookshelf photo and print its public URL.
A device id is generated on first use and reused on every later run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("server")
		deviceFile, _ := cmd.Flags().GetString("device-file")
		return runScan(cmd.Context(), cmd, server, deviceFile, args[0])
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().String("server", "http://localhost:3000", "Shelf scanner API base URL")
	scanCmd.Flags().String("device-file", "", "Device id file (default: <user config dir>/shelf-scanner/device_id)")
}

func runScan(ctx context.Context, cmd *cobra.Command, server, deviceFile, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if deviceFile == "" {
		p, err := client.DefaultDeviceIDPath()
		if err != nil {
			return err
		}
		deviceFile = p
	}

	uploader := client.NewUploader(server, client.NewDeviceStore(deviceFile), nil)
	result, err := uploader.Upload(ctx, path)
	if err != nil {
		var se *client.ServerError
		if errors.As(err, &se) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Upload failed: %s\n", se.Message)
			os.Exit(1)
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.ImageURL)
	return nil
}
