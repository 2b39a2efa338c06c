package app

import (
	"testing"

	_ "github.com/meridian-ops/meridian/internal/testing/guard"
)

func TestGuardEnablesTestMode(t *testing.T) {
	RefreshTestMode()
	if !InTestMode() {
		t.Fatal("guard import must enable test mode")
	}
}

func TestRefreshTestModeTracksEnvironment(t *testing.T) {
	t.Setenv("MERIDIAN_TEST_MODE", "0")
	RefreshTestMode()
	if InTestMode() {
		t.Fatal("expected test mode off after unsetting flag")
	}

	t.Setenv("MERIDIAN_TEST_MODE", "1")
	RefreshTestMode()
	if !InTestMode() {
		t.Fatal("expected test mode on after setting flag")
	}
}
