package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jihwankim/cascadesim/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() should validate, got %v", err)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ticks != 100 {
		t.Errorf("expected default ticks, got %d", cfg.Ticks)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("ticks: 50\nthreshold: 0.5\ncooldown: 0\n"), 0o644)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ticks != 50 || cfg.Threshold != 0.5 {
		t.Errorf("expected overridden fields, got %+v", cfg)
	}
	if cfg.CooldownTicks() != 0 {
		t.Errorf("expected explicit cooldown=0 to be honored, got %d", cfg.CooldownTicks())
	}
}

func TestValidate_RejectsOutOfRangeThreshold(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Threshold = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for threshold > 1")
	}
}

func TestCooldownTicks_NilMeansZero(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Cooldown = nil
	if cfg.CooldownTicks() != 0 {
		t.Errorf("expected nil cooldown to default to 0, got %d", cfg.CooldownTicks())
	}
}
