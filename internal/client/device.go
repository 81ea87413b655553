// Package client 扫描客户端：本地设备ID、上传前的图片检查与上传
package client

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/anoixa/shelf-scanner/utils"
	"github.com/anoixa/shelf-scanner/utils/validator"
	"github.com/google/uuid"
	"github.com/natefinch/atomic"
	"go.uber.org/zap"
)

const (
	appDirName       = "shelf-scanner"
	deviceIDFileName = "device_id"
)

// DefaultDeviceIDPath 用户配置目录下的设备ID文件
func DefaultDeviceIDPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(dir, appDirName, deviceIDFileName), nil
}

// DeviceStore 每个安装实例一个设备ID，首次生成后长期复用
type DeviceStore struct {
	path string
	mu   sync.Mutex
	id   string
}

// NewDeviceStore 创建设备ID存储
func NewDeviceStore(path string) *DeviceStore {
	return &DeviceStore{path: path}
}

// Path 设备ID文件路径
func (s *DeviceStore) Path() string {
	return s.path
}

// DeviceID 读取设备ID，不存在或内容损坏时生成新ID并原子写入
func (s *DeviceStore) DeviceID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id != "" {
		return s.id, nil
	}

	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		id := strings.TrimSpace(string(data))
		if validator.ValidateDeviceID(id) == nil {
			s.id = id
			return id, nil
		}
		utils.Logger().Warn("Stored device id is invalid, generating a new one", zap.String("path", s.path))
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("failed to read device id: %w", err)
	}

	id := uuid.NewString()
	if err := s.write(id); err != nil {
		return "", err
	}
	s.id = id
	utils.Logger().Info("Generated new device id", zap.String("device_id", id), zap.String("path", s.path))
	return id, nil
}

func (s *DeviceStore) write(id string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create device id dir: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewBufferString(id+"\n")); err != nil {
		return fmt.Errorf("failed to persist device id: %w", err)
	}
	return nil
}
