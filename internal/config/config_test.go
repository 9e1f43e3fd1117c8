package config

import (
	"testing"

	"github.com/bookforge/cover-service/internal/cover"
)

func TestPlatformApplyOverridesCeilings(t *testing.T) {
	p := PlatformConfig{MaxDigitalMB: 10, MaxPrintMB: 200}

	spec := p.Apply(cover.DefaultPlatform())

	if spec.MaxDigitalBytes != 10<<20 {
		t.Errorf("MaxDigitalBytes = %d, want %d", spec.MaxDigitalBytes, 10<<20)
	}
	if spec.MaxPrintBytes != 200<<20 {
		t.Errorf("MaxPrintBytes = %d, want %d", spec.MaxPrintBytes, 200<<20)
	}
}

func TestPlatformApplyKeepsDefaultsOnZero(t *testing.T) {
	def := cover.DefaultPlatform()

	spec := PlatformConfig{}.Apply(def)

	if spec.MaxDigitalBytes != def.MaxDigitalBytes {
		t.Errorf("MaxDigitalBytes = %d, want default %d", spec.MaxDigitalBytes, def.MaxDigitalBytes)
	}
	if spec.MaxPrintBytes != def.MaxPrintBytes {
		t.Errorf("MaxPrintBytes = %d, want default %d", spec.MaxPrintBytes, def.MaxPrintBytes)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Platform.MaxDigitalMB != 50 {
		t.Errorf("MaxDigitalMB = %d, want 50", cfg.Platform.MaxDigitalMB)
	}
	if cfg.Platform.MaxPrintMB != 650 {
		t.Errorf("MaxPrintMB = %d, want 650", cfg.Platform.MaxPrintMB)
	}
	if got := cfg.Server.Address(); got != "0.0.0.0:8080" {
		t.Errorf("Address = %q, want 0.0.0.0:8080", got)
	}
}
