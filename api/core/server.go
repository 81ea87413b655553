package core

import (
	"net/http"
	"strings"
	"time"

	"github.com/anoixa/shelf-scanner/api/middleware"
	"github.com/anoixa/shelf-scanner/config"
	"github.com/anoixa/shelf-scanner/internal/services/scan"
	"github.com/anoixa/shelf-scanner/storage"
	"github.com/anoixa/shelf-scanner/utils"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServerDependencies 服务器依赖项
type ServerDependencies struct {
	Config      *config.Config
	ScanService *scan.Service
	Storage     storage.Provider
}

// NewRouter 创建 gin 引擎并注册中间件与路由
func NewRouter(deps *ServerDependencies) *gin.Engine {
	cfg := deps.Config
	if !cfg.IsDebug() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	logger := utils.Logger()

	// 全局中间件
	router.Use(middleware.RequestID())
	router.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/"},
		Context: func(c *gin.Context) []zapcore.Field {
			return []zapcore.Field{
				zap.String("request_id", middleware.GetRequestID(c)),
			}
		},
	}))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(cors.New(corsConfig(cfg.CorsAllowedOrigin)))

	_ = router.SetTrustedProxies(nil)

	// multipart 超出部分落盘，文件最终仍整体读入内存
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	// 并发限制，避免内存过载
	router.Use(middleware.NewConcurrencyLimiter(cfg.MaxConcurrency).Middleware())

	RegisterRoutes(router, deps)
	return router
}

// corsConfig 允许配置的客户端来源，"*" 表示任意来源
func corsConfig(allowed string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "X-Device-Id", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	var origins []string
	for _, o := range strings.Split(allowed, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}

// NewServer 创建 http.Server
func NewServer(deps *ServerDependencies) *http.Server {
	cfg := deps.Config
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      NewRouter(deps),
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}
}
