package util

import (
	"testing"
	"time"
)

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      bool
		expected bool
	}{
		{"empty uses default", "", true, true},
		{"true", "true", false, true},
		{"one", "1", false, true},
		{"yes upper", "YES", false, true},
		{"on with spaces", " on ", false, true},
		{"false", "false", true, false},
		{"zero", "0", true, false},
		{"off", "off", true, false},
		{"garbage uses default", "maybe", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BOOTHBOT_TEST_BOOL", tt.value)
			if got := ParseBoolEnv("BOOTHBOT_TEST_BOOL", tt.def); got != tt.expected {
				t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.expected)
			}
		})
	}
}

func TestParseDurationEnv(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{"empty uses default", "", time.Minute, time.Minute},
		{"seconds", "30s", time.Minute, 30 * time.Second},
		{"hours", "720h", time.Minute, 720 * time.Hour},
		{"spaces trimmed", " 5m ", time.Minute, 5 * time.Minute},
		{"garbage uses default", "soon", time.Minute, time.Minute},
		{"bare number uses default", "30", time.Minute, time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BOOTHBOT_TEST_DURATION", tt.value)
			if got := ParseDurationEnv("BOOTHBOT_TEST_DURATION", tt.def); got != tt.expected {
				t.Errorf("ParseDurationEnv(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.expected)
			}
		})
	}
}
