package utils

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// mimeToExtMap MIME类型到安全扩展名的映射
var mimeToExtMap = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
	"image/heic": ".heic",
}

// NormalizeMimeType 去掉参数并转小写，如 "image/PNG; q=1" -> "image/png"
func NormalizeMimeType(mimeType string) string {
	mimeType = strings.Split(mimeType, ";")[0]
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// IsImageMimeType MIME 类型是否以 image/ 开头
func IsImageMimeType(mimeType string) bool {
	return strings.HasPrefix(NormalizeMimeType(mimeType), "image/")
}

// GetSafeExtension 根据MIME类型返回安全的文件扩展名
// 如果MIME类型不被允许，返回空字符串
func GetSafeExtension(mimeType string) string {
	if ext, ok := mimeToExtMap[NormalizeMimeType(mimeType)]; ok {
		return ext
	}
	return ""
}

// GetExtensionFromFilename 从文件名获取扩展名（小写）
func GetExtensionFromFilename(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// DeclaredContentType 根据文件扩展名推断声明的 MIME 类型
func DeclaredContentType(filename string) string {
	ext := GetExtensionFromFilename(filename)
	if ext == "" {
		return ""
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return NormalizeMimeType(ct)
	}
	for mimeType, safeExt := range mimeToExtMap {
		if safeExt == ext {
			return mimeType
		}
	}
	return ""
}

func SniffContentType(stream io.ReadSeeker) (string, error) {
	buffer := make([]byte, 512)

	n, err := stream.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read stream for mime sniffing: %w", err)
	}

	contentType := http.DetectContentType(buffer[:n])

	_, err = stream.Seek(0, io.SeekStart)
	if err != nil {
		return "", fmt.Errorf("failed to seek stream back to start after sniffing: %w", err)
	}

	return contentType, nil
}
