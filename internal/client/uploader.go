package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anoixa/shelf-scanner/database/models"
)

const (
	DefaultTimeout = 60 * time.Second
	deviceIDHeader = "x-device-id"
)

// ServerError 服务端返回的错误
type ServerError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *ServerError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("upload failed (%d): %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("upload failed (%d): %s", e.StatusCode, e.Message)
}

// UploadResult 上传成功后的扫描记录与公开地址
type UploadResult struct {
	Scan     models.Scan `json:"scan"`
	ImageURL string      `json:"imageUrl"`
}

// Uploader 单次上传，不重试
type Uploader struct {
	baseURL string
	devices *DeviceStore
	client  *http.Client
}

// NewUploader 创建上传器，client 为 nil 时使用默认超时的客户端
func NewUploader(baseURL string, devices *DeviceStore, client *http.Client) *Uploader {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Uploader{
		baseURL: strings.TrimRight(baseURL, "/"),
		devices: devices,
		client:  client,
	}
}

// Upload 校验并上传本地图片
func (u *Uploader) Upload(ctx context.Context, path string) (*UploadResult, error) {
	contentType, err := ValidateImage(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	if err := checkImageContent(path, file); err != nil {
		return nil, err
	}

	deviceID, err := u.devices.DeviceID()
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	body, formType, err := buildForm(filepath.Base(path), contentType, data)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/api/scan", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", formType)
	req.Header.Set(deviceIDHeader, deviceID)

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach server: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeResponse(resp)
}

func buildForm(filename, contentType string, data []byte) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("failed to build form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to build form: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func decodeResponse(resp *http.Response) (*UploadResult, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if json.Unmarshal(raw, &errBody) != nil || errBody.Error == "" {
			errBody.Error = strings.TrimSpace(string(raw))
			if errBody.Error == "" {
				errBody.Error = http.StatusText(resp.StatusCode)
			}
		}
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: errBody.Error, Details: errBody.Details}
	}

	var result UploadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}
