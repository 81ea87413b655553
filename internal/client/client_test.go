package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestDeviceStore_PersistsAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelf-scanner", "device_id")

	first, err := NewDeviceStore(path).DeviceID()
	require.NoError(t, err)
	assert.Len(t, first, 36)

	// 新实例模拟客户端重启
	second, err := NewDeviceStore(path).DeviceID()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, strings.TrimSpace(string(raw)))
}

func TestDeviceStore_ReplacesCorruptID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device_id")
	require.NoError(t, os.WriteFile(path, []byte("not a valid/id"), 0600))

	id, err := NewDeviceStore(path).DeviceID()
	require.NoError(t, err)
	assert.NotEqual(t, "not a valid/id", id)

	again, err := NewDeviceStore(path).DeviceID()
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestValidateImage(t *testing.T) {
	cases := []struct {
		name     string
		wantType string
		wantErr  bool
	}{
		{"shelf.png", "image/png", false},
		{"shelf.JPG", "image/jpeg", false},
		{"shelf.jpeg", "image/jpeg", false},
		{"notes.txt", "", true},
		{"archive.zip", "", true},
		{"noext", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ct, err := ValidateImage(tc.name)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrNotImage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantType, ct)
		})
	}
}

func TestUpload_Success(t *testing.T) {
	var gotDevice, gotType, gotName string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/scan", r.URL.Path)
		gotDevice = r.Header.Get("x-device-id")

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		gotName = header.Filename
		gotType = header.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success":  true,
			"imageUrl": "http://cdn.example.com/uploads/" + gotDevice + "/1.png",
			"scan": map[string]interface{}{
				"id":        "7a1f6c1e-0000-4000-8000-000000000000",
				"device_id": gotDevice,
				"image_url": "http://cdn.example.com/uploads/" + gotDevice + "/1.png",
				"status":    "uploaded",
			},
		})
	}))
	defer server.Close()

	store := NewDeviceStore(filepath.Join(t.TempDir(), "device_id"))
	deviceID, err := store.DeviceID()
	require.NoError(t, err)

	result, err := NewUploader(server.URL+"/", store, server.Client()).Upload(context.Background(), writeFile(t, "shelf.png", pngBytes))
	require.NoError(t, err)

	assert.Equal(t, deviceID, gotDevice)
	assert.Equal(t, "shelf.png", gotName)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, pngBytes, gotBody)
	assert.Equal(t, result.Scan.ImageURL, result.ImageURL)
	assert.Equal(t, deviceID, result.Scan.DeviceID)
	assert.EqualValues(t, "uploaded", result.Scan.Status)
}

func TestUpload_RejectsNonImageBeforeNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	store := NewDeviceStore(filepath.Join(t.TempDir(), "device_id"))
	_, err := NewUploader(server.URL, store, nil).Upload(context.Background(), writeFile(t, "notes.txt", []byte("hello")))

	assert.ErrorIs(t, err, ErrNotImage)
	assert.Zero(t, calls.Load())
	_, statErr := os.Stat(store.Path())
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "device id should not be created for rejected files")
}

func TestUpload_RejectsDisguisedFile(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	store := NewDeviceStore(filepath.Join(t.TempDir(), "device_id"))
	_, err := NewUploader(server.URL, store, nil).Upload(context.Background(), writeFile(t, "shelf.png", []byte("just some text")))

	assert.ErrorIs(t, err, ErrNotImage)
	assert.Zero(t, calls.Load())
}

func TestUpload_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to upload image","details":"object already exists"}`))
	}))
	defer server.Close()

	store := NewDeviceStore(filepath.Join(t.TempDir(), "device_id"))
	_, err := NewUploader(server.URL, store, nil).Upload(context.Background(), writeFile(t, "shelf.png", pngBytes))
	require.Error(t, err)

	var se *ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "Failed to upload image", se.Message)
	assert.Equal(t, "object already exists", se.Details)
}

func TestUpload_PlainTextError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	store := NewDeviceStore(filepath.Join(t.TempDir(), "device_id"))
	_, err := NewUploader(server.URL, store, nil).Upload(context.Background(), writeFile(t, "shelf.png", pngBytes))

	var se *ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "bad gateway", se.Message)
}
