package validator

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/anoixa/shelf-scanner/utils"
)

const maxDeviceIDLength = 128

var (
	ErrDeviceIDMissing = errors.New("device id is required")
	ErrDeviceIDInvalid = errors.New("device id may only contain letters, digits, '-' and '_' (max 128)")
)

// IsImage 嗅探文件头，MIME 以 image/ 开头即视为图片
// 读取后流会被重置到开头
func IsImage(file io.ReadSeeker) (bool, string, error) {
	mimeType, err := utils.SniffContentType(file)
	if err != nil {
		return false, "", err
	}
	if !utils.IsImageMimeType(mimeType) {
		return false, "", nil
	}
	return true, utils.NormalizeMimeType(mimeType), nil
}

// IsImageBytes 已读入内存的上传内容
func IsImageBytes(data []byte) (bool, string) {
	if len(data) == 0 {
		return false, ""
	}
	mimeType := http.DetectContentType(data)
	if !utils.IsImageMimeType(mimeType) {
		return false, ""
	}
	return true, utils.NormalizeMimeType(mimeType)
}

// ValidateDeviceID 校验客户端提供的设备ID
// 设备ID只是不可信的标签，这里只保证它能安全地作为对象键前缀
func ValidateDeviceID(deviceID string) error {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return ErrDeviceIDMissing
	}
	if len(deviceID) > maxDeviceIDLength {
		return ErrDeviceIDInvalid
	}
	for _, r := range deviceID {
		if (r < 'a' || r > 'z') &&
			(r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') &&
			r != '-' && r != '_' {
			return ErrDeviceIDInvalid
		}
	}
	return nil
}
