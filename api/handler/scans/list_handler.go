package scans

import (
	"net/http"
	"strconv"

	"github.com/anoixa/shelf-scanner/api/common"
	"github.com/anoixa/shelf-scanner/internal/services/scan"
	"github.com/gin-gonic/gin"
)

// GetLatestScan 设备最近一次扫描
// @Summary      Latest scan of a device
// @Tags         scans
// @Produce      json
// @Param        x-device-id  header  string  true  "Client generated device identifier"
// @Success      200  {object}  LatestResponse
// @Failure      400  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse  "Device has no scans"
// @Failure      500  {object}  common.ServerErrorResponse
// @Router       /api/scans/latest [get]
func (h *Handler) GetLatestScan(c *gin.Context) {
	latest, err := h.service.Latest(c.Request.Context(), c.GetHeader(DeviceIDHeader))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, LatestResponse{Success: true, Scan: latest})
}

// ListScans 分页列出设备的扫描记录
// @Summary      List scans of a device
// @Tags         scans
// @Produce      json
// @Param        x-device-id  header  string  true   "Client generated device identifier"
// @Param        page         query   int     false  "Page number, starting at 1"
// @Param        limit        query   int     false  "Page size (1-100, default 20)"
// @Success      200  {object}  ListResponse
// @Failure      400  {object}  common.ErrorResponse
// @Failure      500  {object}  common.ServerErrorResponse
// @Router       /api/scans [get]
func (h *Handler) ListScans(c *gin.Context) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", scan.DefaultPageLimit)
	if !ok {
		return
	}
	if limit < 1 || limit > scan.MaxPageLimit {
		common.RespondError(c, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}

	result, err := h.service.List(c.Request.Context(), c.GetHeader(DeviceIDHeader), page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, ListResponse{
		Success: true,
		Scans:   result.Scans,
		Total:   result.Total,
		Page:    result.Page,
		Limit:   result.Limit,
	})
}

func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid "+name+" parameter")
		return 0, false
	}
	return v, true
}
