package cmd

import (
	"fmt"
	"os"

	"github.com/anoixa/shelf-scanner/config"
	"github.com/anoixa/shelf-scanner/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shelf-scanner",
	Short: "Bookshelf scan upload service",
	Run: func(cmd *cobra.Command, args []string) {
		serveCmd.Run(cmd, args)
	},
}

func Execute() {
	err := rootCmd.Execute()
	utils.SyncLogger()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (eg: /etc/shelf-scanner/.env)")
	err := viper.BindPFlag("config_file_path", rootCmd.PersistentFlags().Lookup("config"))
	if err != nil {
		return
	}
}

// loadConfig 加载配置并初始化全局日志，validate 为 true 时缺失必需配置直接退出
func loadConfig(validate bool) *config.Config {
	config.InitConfig()
	cfg := config.Get()

	if _, err := utils.InitLogger(cfg.IsDebug()); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if validate {
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
			os.Exit(1)
		}
	}
	return cfg
}
