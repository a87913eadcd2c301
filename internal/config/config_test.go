package config

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/san-kum/flightdyn/internal/fdm"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Vehicle.Mass <= 0 {
		t.Error("mass should be positive")
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if len(cfg.Gears) != 3 {
		t.Errorf("expected a tricycle gear layout, got %d gears", len(cfg.Gears))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestValidateRejectsBadMass(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Vehicle.Mass = 0

	if err := cfg.Validate(); !errors.Is(err, fdm.ErrBadMass) {
		t.Errorf("expected ErrBadMass, got %v", err)
	}
}

func TestValidateRejectsSingularInertia(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Vehicle.Ixx = 0
	cfg.Vehicle.Ixz = 0

	if err := cfg.Validate(); !errors.Is(err, fdm.ErrSingularInertia) {
		t.Errorf("expected ErrSingularInertia, got %v", err)
	}
}

func TestValidateRejectsBadRates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rates.Contact = 0

	if err := cfg.Validate(); !errors.Is(err, fdm.ErrBadRateDivisor) {
		t.Errorf("expected ErrBadRateDivisor, got %v", err)
	}
}

func TestInertiaTensorsInverse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Vehicle.Ixz = 120

	j, jinv, err := cfg.InertiaTensors()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// J * Jinv should be the identity.
	p := j.MulMat(jinv)
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			want := 0.0
			if i == k {
				want = 1.0
			}
			if math.Abs(p[i][k]-want) > 1e-9 {
				t.Fatalf("J*Jinv not identity at (%d,%d): %f", i, k, p[i][k])
			}
		}
	}
}

func TestECEFPositionAtEquator(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Initial.Latitude = 0
	cfg.Initial.Longitude = 0
	cfg.Initial.Altitude = 0

	pos := cfg.ECEFPosition()
	// On the equator at the prime meridian the position is one equatorial
	// radius along +x.
	if math.Abs(pos[0]-6378137.0) > 1.0 {
		t.Errorf("expected x near the equatorial radius, got %f", pos[0])
	}
	if math.Abs(pos[1]) > 1.0 || math.Abs(pos[2]) > 1.0 {
		t.Errorf("expected y,z near zero, got %v", pos)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "landing.yaml")

	cfg := DefaultConfig()
	cfg.Initial.DescentRate = 2.5
	cfg.Gravity = "standard"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Initial.DescentRate != 2.5 {
		t.Errorf("descent rate lost in round trip: %f", loaded.Initial.DescentRate)
	}
	if loaded.Gravity != "standard" {
		t.Errorf("gravity model lost in round trip: %s", loaded.Gravity)
	}
}

func TestGetPreset(t *testing.T) {
	if p := GetPreset("hard-landing"); p == nil || p.Initial.DescentRate != 4.0 {
		t.Error("hard-landing preset missing or wrong")
	}
	if p := GetPreset("nonexistent"); p != nil {
		t.Error("expected nil for unknown preset")
	}
	if len(ListPresets()) == 0 {
		t.Error("expected some presets")
	}
}

func TestGetPresetCopyIsIsolated(t *testing.T) {
	a := GetPreset("soft-landing")
	orig := a.Gears[0].Friction

	a.Gears[0].Friction = 0.01
	a.Initial.Altitude = 999

	b := GetPreset("soft-landing")
	if b.Gears[0].Friction != orig {
		t.Errorf("gear mutation leaked into the preset: %f", b.Gears[0].Friction)
	}
	if b.Initial.Altitude == 999 {
		t.Error("initial-state mutation leaked into the preset")
	}
}
