package generator

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// ObjectKeyGenerator 对象键生成器
// 键格式: {device_id}/{upload_timestamp_ms}{ext}，如 3f2a.../1700000000123.jpg
type ObjectKeyGenerator struct {
	now func() time.Time
}

// NewObjectKeyGenerator 创建对象键生成器
func NewObjectKeyGenerator() *ObjectKeyGenerator {
	return &ObjectKeyGenerator{now: time.Now}
}

// NewObjectKeyGeneratorWithClock 测试用，指定时钟
func NewObjectKeyGeneratorWithClock(now func() time.Time) *ObjectKeyGenerator {
	return &ObjectKeyGenerator{now: now}
}

// Now 当前上传时间
func (g *ObjectKeyGenerator) Now() time.Time {
	return g.now()
}

// Generate 生成对象键
// ext 可带或不带前导点，空扩展名时不附加
func (g *ObjectKeyGenerator) Generate(deviceID string, ext string, uploadTime time.Time) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	ts := strconv.FormatInt(uploadTime.UnixMilli(), 10)
	if ext == "" {
		return fmt.Sprintf("%s/%s", deviceID, ts)
	}
	return fmt.Sprintf("%s/%s.%s", deviceID, ts, ext)
}

// ObjectKeyInfo 从对象键解析出的信息
type ObjectKeyInfo struct {
	DeviceID   string
	UploadedAt time.Time
	Ext        string
}

// Parse 解析对象键，不符合格式时 ok 为 false
func (g *ObjectKeyGenerator) Parse(key string) (ObjectKeyInfo, bool) {
	dir, file := path.Split(key)
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" || strings.Contains(dir, "/") || file == "" {
		return ObjectKeyInfo{}, false
	}

	ext := path.Ext(file)
	ms, err := strconv.ParseInt(strings.TrimSuffix(file, ext), 10, 64)
	if err != nil || ms <= 0 {
		return ObjectKeyInfo{}, false
	}

	return ObjectKeyInfo{
		DeviceID:   dir,
		UploadedAt: time.UnixMilli(ms),
		Ext:        strings.TrimPrefix(ext, "."),
	}, true
}

// KeyFromURL 取公开地址末尾的 {device_id}/{timestamp}.{ext} 作为对象键
// 与地址前缀（域名、端口、存储桶路径）无关
func (g *ObjectKeyGenerator) KeyFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		return "", false
	}
	key := segments[len(segments)-2] + "/" + segments[len(segments)-1]
	if _, ok := g.Parse(key); !ok {
		return "", false
	}
	return key, true
}
