package sink

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWattsTopic(t *testing.T) {
	got := WattsTopic("vue", 1000, "1,2,3")
	if got != "vue/1000/1,2,3/watts" {
		t.Errorf("WattsTopic = %q, want %q", got, "vue/1000/1,2,3/watts")
	}
}

func TestAvailabilityTopic(t *testing.T) {
	if got := AvailabilityTopic("vue"); got != "vue/availability" {
		t.Errorf("AvailabilityTopic = %q, want %q", got, "vue/availability")
	}
}

func TestNewTLSConfig_MissingFile(t *testing.T) {
	if _, err := newTLSConfig("/nonexistent/ca.pem"); err == nil {
		t.Error("expected error for missing CA file")
	}
}

func TestNewTLSConfig_BadPEM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ca.pem")
	if err := os.WriteFile(path, []byte("not a certificate"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := newTLSConfig(path); err == nil {
		t.Error("expected error for malformed CA file")
	}
}
