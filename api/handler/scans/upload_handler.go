package scans

import (
	"errors"
	"io"
	"net/http"

	"github.com/anoixa/shelf-scanner/api/common"
	"github.com/anoixa/shelf-scanner/api/middleware"
	"github.com/anoixa/shelf-scanner/internal/services/scan"
	"github.com/gin-gonic/gin"
)

// UploadScan 接收书架照片
// @Summary      Upload a shelf scan
// @Description  Stores the image in the object store and records a scan for the device
// @Tags         scans
// @Accept       multipart/form-data
// @Produce      json
// @Param        x-device-id  header    string  true  "Client generated device identifier"
// @Param        image        formData  file    true  "Shelf photo (PNG or JPEG)"
// @Success      200  {object}  UploadResponse
// @Failure      400  {object}  common.ErrorResponse        "Missing or invalid input"
// @Failure      413  {object}  common.ErrorResponse        "File too large"
// @Failure      500  {object}  common.ServerErrorResponse  "Storage or database failure"
// @Router       /api/scan [post]
func (h *Handler) UploadScan(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		switch {
		case middleware.IsBodyTooLarge(err):
			common.RespondError(c, http.StatusRequestEntityTooLarge, middleware.TooLargeMessage(h.maxUploadBytes))
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			common.RespondError(c, http.StatusBadRequest, "No image file provided")
		default:
			common.RespondError(c, http.StatusBadRequest, "Invalid form data")
		}
		return
	}

	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		common.RespondError(c, http.StatusRequestEntityTooLarge, middleware.TooLargeMessage(h.maxUploadBytes))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	result, err := h.service.Submit(c.Request.Context(), scan.Upload{
		DeviceID: c.GetHeader(DeviceIDHeader),
		Filename: fileHeader.Filename,
		Data:     data,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, UploadResponse{
		Success:  true,
		Scan:     result.Scan,
		ImageURL: result.ImageURL,
	})
}
