package scans

import (
	"errors"
	"net/http"

	"github.com/anoixa/shelf-scanner/api/common"
	"github.com/anoixa/shelf-scanner/database/models"
	"github.com/anoixa/shelf-scanner/internal/services/scan"
	"github.com/anoixa/shelf-scanner/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DeviceIDHeader 客户端设备ID请求头
// 设备ID只是客户端自报的标签，不做鉴权
const DeviceIDHeader = "x-device-id"

// Handler 扫描上传与查询
type Handler struct {
	service        *scan.Service
	maxUploadBytes int64
}

// NewHandler 扫描处理器
func NewHandler(service *scan.Service, maxUploadBytes int64) *Handler {
	return &Handler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadResponse 上传成功响应
type UploadResponse struct {
	Success  bool         `json:"success"`
	Scan     *models.Scan `json:"scan"`
	ImageURL string       `json:"imageUrl"`
}

// LatestResponse 最近扫描响应
type LatestResponse struct {
	Success bool         `json:"success"`
	Scan    *models.Scan `json:"scan"`
}

// ListResponse 扫描列表响应
type ListResponse struct {
	Success bool           `json:"success"`
	Scans   []*models.Scan `json:"scans"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}

// respondServiceError 按错误类别映射状态码
func respondServiceError(c *gin.Context, err error) {
	var de *scan.DownstreamError
	switch {
	case scan.IsInputError(err):
		common.RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, scan.ErrNotFound):
		common.RespondError(c, http.StatusNotFound, "No scans found for this device")
	case errors.As(err, &de):
		utils.Logger().Error("Scan request failed",
			zap.String("step", string(de.Step)),
			zap.String("path", c.FullPath()),
			zap.Error(de.Err),
		)
		common.RespondServerError(c, de.Message(), de.Err)
	default:
		utils.Logger().Error("Scan request failed", zap.String("path", c.FullPath()), zap.Error(err))
		common.RespondServerError(c, "Internal server error", err)
	}
}
