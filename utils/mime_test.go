package utils

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffContentType(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}
	large := make([]byte, 4096)
	copy(large, jpeg)

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", jpeg, "image/jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"text", []byte("Moby Dick, Dune, SICP"), "text/plain; charset=utf-8"},
		{"larger than sniff window", large, "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := bytes.NewReader(tt.data)
			got, err := SniffContentType(reader)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			rest, err := io.ReadAll(reader)
			require.NoError(t, err)
			assert.Len(t, rest, len(tt.data), "stream should be rewound after sniffing")
		})
	}
}

// TestIsImageMimeType 测试 image/ 前缀判断
func TestIsImageMimeType(t *testing.T) {
	assert.True(t, IsImageMimeType("image/png"))
	assert.True(t, IsImageMimeType("IMAGE/JPEG; charset=binary"))
	assert.True(t, IsImageMimeType("image/gif"))
	assert.False(t, IsImageMimeType("text/plain; charset=utf-8"))
	assert.False(t, IsImageMimeType("application/octet-stream"))
	assert.False(t, IsImageMimeType(""))
}

// TestGetSafeExtension 测试扩展名映射
func TestGetSafeExtension(t *testing.T) {
	assert.Equal(t, ".jpg", GetSafeExtension("image/jpeg"))
	assert.Equal(t, ".jpg", GetSafeExtension("image/jpg"))
	assert.Equal(t, ".png", GetSafeExtension("image/png; foo=bar"))
	assert.Equal(t, "", GetSafeExtension("application/pdf"))
}

// TestDeclaredContentType 测试根据文件名推断类型
func TestDeclaredContentType(t *testing.T) {
	assert.Equal(t, "image/png", DeclaredContentType("shelf.PNG"))
	assert.Equal(t, "image/jpeg", DeclaredContentType("/tmp/shelf.jpg"))
	assert.Equal(t, "", DeclaredContentType("README"))
	assert.False(t, IsImageMimeType(DeclaredContentType("notes.txt")))
}
