package core

import (
	"github.com/anoixa/shelf-scanner/api/common"
	"github.com/anoixa/shelf-scanner/api/handler/objects"
	"github.com/anoixa/shelf-scanner/api/handler/scans"
	"github.com/anoixa/shelf-scanner/api/middleware"
	"github.com/anoixa/shelf-scanner/config"
	"github.com/anoixa/shelf-scanner/storage"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *ServerDependencies) {
	// 基础路由
	registerBasicRoutes(router, deps)

	// 对象公开读取
	registerObjectRoutes(router, deps)

	// API 路由
	registerAPIRoutes(router, deps)
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *ServerDependencies) {
	healthHandler := NewHealthHandler(deps.Storage)
	router.GET("/", healthHandler.Handle)

	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// registerObjectRoutes 本地与 WebDAV 存储的公开地址指向这里
func registerObjectRoutes(router *gin.Engine, deps *ServerDependencies) {
	if deps.Storage == nil {
		return
	}
	objectHandler := objects.NewHandler(deps.Storage)
	router.GET(storage.ObjectsRoutePrefix+"/:bucket/*key", objectHandler.GetObject)
}

// registerAPIRoutes 注册 API 路由
func registerAPIRoutes(router *gin.Engine, deps *ServerDependencies) {
	maxUpload := deps.Config.MaxUploadBytes()
	scanHandler := scans.NewHandler(deps.ScanService, maxUpload)

	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.NoStore())
	{
		apiGroup.POST("/scan", middleware.BodyLimit(maxUpload), scanHandler.UploadScan)
		apiGroup.GET("/scans", scanHandler.ListScans)
		apiGroup.GET("/scans/latest", scanHandler.GetLatestScan)
	}
}
