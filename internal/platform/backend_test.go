//go:build linux

package platform

import (
	"strings"
	"testing"
)

func TestNewBackendWithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")

	_, err := NewBackend()
	if err == nil {
		t.Fatal("expected error without DISPLAY")
	}
	if !strings.Contains(err.Error(), "DISPLAY is not set") {
		t.Fatalf("unexpected error: %v", err)
	}
}
