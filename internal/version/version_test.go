package version

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	if got := Get(); got != "0.1.0" {
		t.Errorf("Get() = %q, want %q", got, "0.1.0")
	}
}

func TestGet_Override(t *testing.T) {
	orig := Override
	t.Cleanup(func() { Override = orig })

	Override = "v2.3.4"
	if got := Get(); got != "2.3.4" {
		t.Errorf("Get() = %q, want %q", got, "2.3.4")
	}
}

func TestString_StartsWithVersion(t *testing.T) {
	if !strings.HasPrefix(String(), Get()) {
		t.Errorf("String() = %q, want prefix %q", String(), Get())
	}
}
