package utils

import (
	"net/url"
	"strings"
)

// BuildObjectURL 拼接对象公开访问地址 {base}/{bucket}/{key}
// key 的每一段单独转义，保留路径分隔符
func BuildObjectURL(baseURL, bucket, key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}

	base := strings.TrimRight(baseURL, "/")
	if bucket != "" {
		base += "/" + url.PathEscape(bucket)
	}
	return base + "/" + strings.Join(segments, "/")
}
