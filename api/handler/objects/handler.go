// Package objects 为本地与 WebDAV 存储提供公开读取路由
package objects

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anoixa/shelf-scanner/api/common"
	"github.com/anoixa/shelf-scanner/storage"
	"github.com/anoixa/shelf-scanner/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const immutableCache = "public, max-age=2592000, immutable"

// Handler 对象读取
type Handler struct {
	provider storage.Provider
}

// NewHandler 对象读取处理器
func NewHandler(provider storage.Provider) *Handler {
	return &Handler{provider: provider}
}

// GetObject 按公开地址返回对象内容
// 路由: GET /objects/:bucket/*key
func (h *Handler) GetObject(c *gin.Context) {
	if c.Param("bucket") != h.provider.Bucket() {
		common.RespondError(c, http.StatusNotFound, "Bucket not found")
		return
	}

	key := strings.TrimPrefix(c.Param("key"), "/")
	if !storage.IsValidStoragePath(key) {
		common.RespondError(c, http.StatusBadRequest, "Invalid object key")
		return
	}

	reader, err := h.provider.GetObject(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			common.RespondError(c, http.StatusNotFound, "Object not found")
			return
		}
		if errors.Is(err, storage.ErrInvalidKey) {
			common.RespondError(c, http.StatusBadRequest, "Invalid object key")
			return
		}
		utils.Logger().Error("Failed to read object",
			zap.String("key", utils.SanitizeLogMessage(key)),
			zap.Error(err),
		)
		common.RespondServerError(c, "Failed to read object", err)
		return
	}
	defer func() { _ = reader.Close() }()

	contentType := utils.DeclaredContentType(key)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", immutableCache)
	c.Header("X-Content-Type-Options", "nosniff")

	// 本地文件支持 Range 与条件请求
	if rs, ok := reader.(io.ReadSeeker); ok {
		http.ServeContent(c.Writer, c.Request, "", time.Time{}, rs)
		return
	}

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil && !utils.IsClientDisconnect(err) {
		utils.Logger().Warn("Object stream interrupted", zap.String("key", utils.SanitizeLogMessage(key)), zap.Error(err))
	}
}
