package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	globalConfig Config
	once         sync.Once
)

// ErrMissingConfig 缺少必需配置（启动时致命）
var ErrMissingConfig = errors.New("required configuration is missing")

// Config 扁平化配置结构体
type Config struct {
	// 服务器配置
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerDomain       string        `mapstructure:"server_domain"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`
	CorsAllowedOrigin  string        `mapstructure:"cors_allowed_origin"`
	MaxConcurrency     int64         `mapstructure:"max_concurrency"`

	// 数据库配置
	DBType            string `mapstructure:"db_type"`
	DBHost            string `mapstructure:"db_host"`
	DBPort            int    `mapstructure:"db_port"`
	DBUsername        string `mapstructure:"db_username"`
	DBPassword        string `mapstructure:"db_password"`
	DBName            string `mapstructure:"db_name"`
	DBSSLMode         string `mapstructure:"db_sslmode"`
	DBFilePath        string `mapstructure:"db_file_path"`
	DBMaxOpenConns    int    `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int    `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime int    `mapstructure:"db_conn_max_lifetime"`

	// 对象存储配置
	StorageType           string `mapstructure:"storage_type"`
	StorageEndpoint       string `mapstructure:"storage_endpoint"`
	StorageAccessKey      string `mapstructure:"storage_access_key"`
	StorageSecretKey      string `mapstructure:"storage_secret_key"`
	StorageUseSSL         bool   `mapstructure:"storage_use_ssl"`
	StorageRegion         string `mapstructure:"storage_region"`
	StorageBucket         string `mapstructure:"storage_bucket"`
	StoragePublicBaseURL  string `mapstructure:"storage_public_base_url"`
	StorageLocalPath      string `mapstructure:"storage_local_path"`
	StorageWebDAVURL      string `mapstructure:"storage_webdav_url"`
	StorageWebDAVUsername string `mapstructure:"storage_webdav_username"`
	StorageWebDAVPassword string `mapstructure:"storage_webdav_password"`

	// 缓存配置
	CacheType          string        `mapstructure:"cache_type"`
	CacheRedisAddr     string        `mapstructure:"cache_redis_addr"`
	CacheRedisPassword string        `mapstructure:"cache_redis_password"`
	CacheRedisDB       int           `mapstructure:"cache_redis_db"`
	CacheLatestScanTTL time.Duration `mapstructure:"cache_latest_scan_ttl"`

	// 上传配置
	UploadMaxSizeMB        int    `mapstructure:"upload_max_size_mb"`
	UploadAllowedMimeTypes string `mapstructure:"upload_allowed_mime_types"`

	// 日志配置
	LogLevel string `mapstructure:"log_level"`
}

// InitConfig Initialize configuration
func InitConfig() {
	once.Do(func() {
		loadConfig()
	})
}

func Get() *Config {
	return &globalConfig
}

// loadConfig Core configuration loading
func loadConfig() {
	setDefaults()

	configFile := viper.GetString("config_file_path")
	if configFile == "" {
		configFile = ".env"
	}
	viper.SetConfigFile(configFile)
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Info: %s not found, using defaults and environment variables\n", configFile)
	} else {
		fmt.Fprintf(os.Stderr, "Info: Loaded configuration from %s\n", configFile)
	}

	viper.AutomaticEnv()
	for _, key := range viper.AllKeys() {
		_ = viper.BindEnv(key, strings.ToUpper(key))
	}
	// 兼容常见 PaaS 的 PORT 变量
	_ = viper.BindEnv("server_port", "SERVER_PORT", "PORT")

	if err := viper.Unmarshal(&globalConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: Unable to unmarshal config, %v\n", err)
		os.Exit(1)
	}
}

// setDefaults 设置默认值
func setDefaults() {
	// 服务器配置默认值
	viper.SetDefault("server_host", "0.0.0.0")
	viper.SetDefault("server_port", 3000)
	viper.SetDefault("server_domain", "")
	viper.SetDefault("server_read_timeout", "15s")
	viper.SetDefault("server_write_timeout", "30s")
	viper.SetDefault("server_idle_timeout", "120s")
	viper.SetDefault("cors_allowed_origin", "*")
	viper.SetDefault("max_concurrency", 100)

	// 数据库配置默认值
	viper.SetDefault("db_type", "postgres")
	viper.SetDefault("db_host", "localhost")
	viper.SetDefault("db_port", 5432)
	viper.SetDefault("db_username", "postgres")
	viper.SetDefault("db_password", "")
	viper.SetDefault("db_name", "shelf_scanner")
	viper.SetDefault("db_sslmode", "disable")
	viper.SetDefault("db_file_path", "./data/shelf-scanner.db")
	viper.SetDefault("db_max_open_conns", 50)
	viper.SetDefault("db_max_idle_conns", 10)
	viper.SetDefault("db_conn_max_lifetime", 3600)

	// 对象存储配置默认值
	viper.SetDefault("storage_type", "minio")
	viper.SetDefault("storage_endpoint", "")
	viper.SetDefault("storage_access_key", "")
	viper.SetDefault("storage_secret_key", "")
	viper.SetDefault("storage_use_ssl", false)
	viper.SetDefault("storage_region", "")
	viper.SetDefault("storage_bucket", "uploads")
	viper.SetDefault("storage_public_base_url", "")
	viper.SetDefault("storage_local_path", "./data/objects")
	viper.SetDefault("storage_webdav_url", "")
	viper.SetDefault("storage_webdav_username", "")
	viper.SetDefault("storage_webdav_password", "")

	// 缓存配置默认值
	viper.SetDefault("cache_type", "memory")
	viper.SetDefault("cache_redis_addr", "localhost:6379")
	viper.SetDefault("cache_redis_password", "")
	viper.SetDefault("cache_redis_db", 0)
	viper.SetDefault("cache_latest_scan_ttl", "10m")

	// 上传配置默认值
	viper.SetDefault("upload_max_size_mb", 5)
	viper.SetDefault("upload_allowed_mime_types", "image/png,image/jpeg,image/jpg")

	// 日志配置默认值
	viper.SetDefault("log_level", "info")
}

// Validate 校验启动所必需的配置，缺失时服务拒绝启动
func (c *Config) Validate() error {
	var missing []string

	switch c.StorageType {
	case "minio", "s3", "":
		if c.StorageEndpoint == "" {
			missing = append(missing, "storage_endpoint")
		}
		if c.StorageAccessKey == "" {
			missing = append(missing, "storage_access_key")
		}
		if c.StorageSecretKey == "" {
			missing = append(missing, "storage_secret_key")
		}
	case "webdav":
		if c.StorageWebDAVURL == "" {
			missing = append(missing, "storage_webdav_url")
		}
	case "local":
		if c.StorageLocalPath == "" {
			missing = append(missing, "storage_local_path")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}

	if c.StorageBucket == "" {
		missing = append(missing, "storage_bucket")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// Addr 返回监听地址，格式为 "host:port"
func (c *Config) Addr() string {
	host := c.ServerHost
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.ServerPort
	if port == 0 {
		port = 3000
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// BaseURL 返回服务对外地址
func (c *Config) BaseURL() string {
	if c.ServerDomain != "" {
		return strings.TrimRight(c.ServerDomain, "/")
	}
	host := c.ServerHost
	if host == "0.0.0.0" || host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.ServerPort)
}

// MaxUploadBytes 单文件上传上限（字节）
func (c *Config) MaxUploadBytes() int64 {
	if c.UploadMaxSizeMB <= 0 {
		return 5 << 20
	}
	return int64(c.UploadMaxSizeMB) << 20
}

// AllowedMimeTypes 返回存储桶允许的 MIME 类型列表
func (c *Config) AllowedMimeTypes() []string {
	var types []string
	for _, t := range strings.Split(c.UploadAllowedMimeTypes, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			types = append(types, t)
		}
	}
	return types
}

// IsDebug 是否输出调试日志
func (c *Config) IsDebug() bool {
	return strings.EqualFold(c.LogLevel, "debug") || IsDevelopment()
}
