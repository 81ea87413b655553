package client

import (
	"errors"
	"fmt"
	"io"

	"github.com/anoixa/shelf-scanner/utils"
	"github.com/anoixa/shelf-scanner/utils/validator"
)

// ErrNotImage 选中的文件不是图片
var ErrNotImage = errors.New("please select an image file")

// ValidateImage 按扩展名推断声明的内容类型，非 image/* 直接拒绝
// 返回声明的 MIME 类型，上传时作为分片的 Content-Type
func ValidateImage(filename string) (string, error) {
	contentType := utils.DeclaredContentType(filename)
	if !utils.IsImageMimeType(contentType) {
		if contentType == "" {
			contentType = "unknown"
		}
		return "", fmt.Errorf("%w: %s has content type %s", ErrNotImage, filename, contentType)
	}
	return contentType, nil
}

// checkImageContent 嗅探文件头，扩展名是图片但内容不是时拒绝
// 读取后流回到开头
func checkImageContent(filename string, file io.ReadSeeker) error {
	ok, _, err := validator.IsImage(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s is not an image", ErrNotImage, filename)
	}
	return nil
}
