package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validMinioConfig() *Config {
	return &Config{
		StorageType:      "minio",
		StorageEndpoint:  "localhost:9000",
		StorageAccessKey: "service-role",
		StorageSecretKey: "secret",
		StorageBucket:    "uploads",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		missing bool
	}{
		{"complete minio config", func(c *Config) {}, false, false},
		{"missing endpoint", func(c *Config) { c.StorageEndpoint = "" }, true, true},
		{"missing privileged key", func(c *Config) { c.StorageAccessKey = "" }, true, true},
		{"missing secret", func(c *Config) { c.StorageSecretKey = "" }, true, true},
		{"missing bucket", func(c *Config) { c.StorageBucket = "" }, true, true},
		{"local needs only a path", func(c *Config) {
			c.StorageType = "local"
			c.StorageEndpoint = ""
			c.StorageLocalPath = "./data"
		}, false, false},
		{"webdav without url", func(c *Config) { c.StorageType = "webdav" }, true, true},
		{"unknown storage type", func(c *Config) { c.StorageType = "ftp" }, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validMinioConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.missing, errors.Is(err, ErrMissingConfig))
		})
	}
}

func TestAddr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:3000", (&Config{}).Addr())
	assert.Equal(t, "127.0.0.1:8080", (&Config{ServerHost: "127.0.0.1", ServerPort: 8080}).Addr())
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:3000", (&Config{ServerHost: "0.0.0.0", ServerPort: 3000}).BaseURL())
	assert.Equal(t, "https://scan.example.com", (&Config{ServerDomain: "https://scan.example.com/"}).BaseURL())
}

func TestMaxUploadBytes(t *testing.T) {
	assert.Equal(t, int64(5<<20), (&Config{}).MaxUploadBytes())
	assert.Equal(t, int64(10<<20), (&Config{UploadMaxSizeMB: 10}).MaxUploadBytes())
}

func TestAllowedMimeTypes(t *testing.T) {
	cfg := &Config{UploadAllowedMimeTypes: " image/png, IMAGE/JPEG ,,image/jpg"}
	assert.Equal(t, []string{"image/png", "image/jpeg", "image/jpg"}, cfg.AllowedMimeTypes())
}
