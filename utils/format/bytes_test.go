package format

import (
	"testing"
)

func TestHumanReadableSize(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{"bytes", 0, "0 B"},
		{"bytes small", 512, "512 B"},
		{"kilobytes", 1024, "1.00 KB"},
		{"upload limit", 5 << 20, "5.00 MB"},
		{"just over limit", 5<<20 + 512<<10, "5.50 MB"},
		{"gigabytes", 1073741824, "1.00 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HumanReadableSize(tt.bytes)
			if result != tt.expected {
				t.Errorf("HumanReadableSize(%d) = %s, want %s", tt.bytes, result, tt.expected)
			}
		})
	}
}
