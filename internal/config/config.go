// Package config holds the scheduler's tuning constants and the
// optional YAML file used to override them, the way warren's deploy
// manifests override a service's defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tunables are the fixed-for-a-run knobs from spec section 4.1.
type Tunables struct {
	Floor                 int     `yaml:"floor"`
	MinIdleFraction       float64 `yaml:"min_idle_fraction"`
	MaxIdleFraction       float64 `yaml:"max_idle_fraction"`
	BootSeconds           int     `yaml:"boot_seconds"`
	PlacementSlackSeconds int     `yaml:"placement_slack_seconds"`
	WarmupGraceSeconds    int     `yaml:"warmup_grace_seconds"`
	RetireDeadlineMinutes int     `yaml:"retire_deadline_minutes"`
}

// Default returns the default tunables from spec section 4.1.
func Default() Tunables {
	return Tunables{
		Floor:                 40,
		MinIdleFraction:       0.4,
		MaxIdleFraction:       0.7,
		BootSeconds:           120,
		PlacementSlackSeconds: 5,
		WarmupGraceSeconds:    86400,
		RetireDeadlineMinutes: 10,
	}
}

// Load reads a YAML overrides file on top of Default. Any field absent
// from the file keeps its default value.
func Load(path string) (Tunables, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Tunables{}, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tunables{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return Tunables{}, fmt.Errorf("config %q: %w", path, err)
	}
	return t, nil
}

// Validate checks the invariants spec section 4.1 requires of the tunables.
func (t Tunables) Validate() error {
	if t.Floor < 0 {
		return fmt.Errorf("floor must be >= 0, got %d", t.Floor)
	}
	if t.MinIdleFraction <= 0 || t.MinIdleFraction >= 1 {
		return fmt.Errorf("min_idle_fraction must be in (0,1), got %v", t.MinIdleFraction)
	}
	if t.MaxIdleFraction <= 0 || t.MaxIdleFraction >= 1 {
		return fmt.Errorf("max_idle_fraction must be in (0,1), got %v", t.MaxIdleFraction)
	}
	if t.MaxIdleFraction <= t.MinIdleFraction {
		return fmt.Errorf("max_idle_fraction (%v) must be > min_idle_fraction (%v)", t.MaxIdleFraction, t.MinIdleFraction)
	}
	if t.BootSeconds < 0 {
		return fmt.Errorf("boot_seconds must be >= 0, got %d", t.BootSeconds)
	}
	if t.PlacementSlackSeconds < 0 {
		return fmt.Errorf("placement_slack_seconds must be >= 0, got %d", t.PlacementSlackSeconds)
	}
	if t.RetireDeadlineMinutes <= 0 || t.RetireDeadlineMinutes > 60 {
		return fmt.Errorf("retire_deadline_minutes must be in (0,60], got %d", t.RetireDeadlineMinutes)
	}
	return nil
}
