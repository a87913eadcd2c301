package sim

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/flightdyn/internal/config"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Integrator = "euler"
	return cfg
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Vehicle.Mass = -1

	if _, err := New(cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected error for negative mass")
	}
}

func TestNewRejectsUnknownIntegrator(t *testing.T) {
	cfg := testConfig()
	cfg.Integrator = "rk9"

	if _, err := New(cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected error for unknown integrator")
	}
}

func TestInitialAltitude(t *testing.T) {
	cfg := testConfig()
	cfg.Initial.Altitude = 50

	s, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(s.prop.Altitude()-50) > 0.5 {
		t.Errorf("expected initial altitude near 50, got %f", s.prop.Altitude())
	}
}

func TestInitialAltitudeAtLatitude(t *testing.T) {
	// The geodetic radius shrinks by kilometers between equator and pole;
	// the terrain sphere must follow the initial position.
	for _, lat := range []float64{-60, 45, 89} {
		cfg := testConfig()
		cfg.Initial.Latitude = lat
		cfg.Initial.Longitude = 9
		cfg.Initial.Altitude = 3

		s, err := New(cfg, zerolog.Nop())
		if err != nil {
			t.Fatalf("unexpected error at lat %f: %v", lat, err)
		}
		if math.Abs(s.prop.Altitude()-3) > 1e-6 {
			t.Errorf("at lat %f expected altitude 3, got %f", lat, s.prop.Altitude())
		}
		if s.gears.ContactCount() != 0 {
			t.Errorf("at lat %f no gear should touch before descent", lat)
		}
	}
}

func TestFreeFall(t *testing.T) {
	cfg := testConfig()
	cfg.Initial.Altitude = 100
	cfg.Initial.DescentRate = 0
	cfg.Duration = 1.0

	s, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("run reported errors: %v", result.Errors)
	}

	last := result.Samples[len(result.Samples)-1]
	// After one second of free fall the vehicle has dropped close to g/2 and
	// is sinking near g. The small offsets come from the centripetal relief
	// and the J2 oblateness.
	drop := 100 - last.Altitude
	if drop < 4.5 || drop > 5.2 {
		t.Errorf("free-fall drop out of range: %f", drop)
	}
	if last.UVW[2] < 9.5 || last.UVW[2] > 10.1 {
		t.Errorf("sink rate out of range: %f", last.UVW[2])
	}
	if last.Contacts != 0 {
		t.Errorf("no gear should touch at altitude %f", last.Altitude)
	}
}

func TestLandingSettles(t *testing.T) {
	cfg := testConfig()
	cfg.Initial.Altitude = 3
	cfg.Initial.DescentRate = 1.5
	cfg.Duration = 8.0

	s, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("run reported errors: %v", result.Errors)
	}

	last := result.Samples[len(result.Samples)-1]
	if last.Contacts == 0 {
		t.Fatal("vehicle should be on its gear at the end of the run")
	}
	// The main gear sits 1.2 m below the reference point.
	if last.Altitude < 0.8 || last.Altitude > 1.5 {
		t.Errorf("settled altitude out of range: %f", last.Altitude)
	}
	if math.Abs(last.UVW[2]) > 0.3 {
		t.Errorf("residual sink rate too large: %f", last.UVW[2])
	}
	// On the ground the reaction supports the weight.
	weight := cfg.Vehicle.Mass * 9.8
	support := last.GearForce.Norm()
	if support < 0.8*weight || support > 1.2*weight {
		t.Errorf("gear support %f far from weight %f", support, weight)
	}
}

func TestMetricsAndObserversInvoked(t *testing.T) {
	cfg := testConfig()
	cfg.Duration = 0.1

	s, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := &countingMetric{}
	o := &countingObserver{}
	s.AddMetric(m)
	s.AddObserver(o)

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if m.observed != result.StepsTaken || o.steps != result.StepsTaken {
		t.Errorf("metric observed %d, observer %d, steps %d", m.observed, o.steps, result.StepsTaken)
	}
	if _, ok := result.Metrics["counting"]; !ok {
		t.Error("metric value missing from the result")
	}
}

func TestContextCancellation(t *testing.T) {
	cfg := testConfig()
	cfg.Duration = 3600

	s, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := s.Run(ctx); err == nil {
		t.Fatal("expected a context error")
	}
}

func TestHoldingFreezesAltitude(t *testing.T) {
	cfg := testConfig()
	cfg.Initial.Altitude = 100
	cfg.Duration = 0.5

	s, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.SetHolding(true)
	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	last := result.Samples[len(result.Samples)-1]
	if math.Abs(last.Altitude-100) > 0.5 {
		t.Errorf("holding run should not move the vehicle, altitude %f", last.Altitude)
	}
}

type countingMetric struct {
	observed int
}

func (m *countingMetric) Name() string     { return "counting" }
func (m *countingMetric) Observe(s Sample) { m.observed++ }
func (m *countingMetric) Value() float64   { return float64(m.observed) }
func (m *countingMetric) Reset()           { m.observed = 0 }

type countingObserver struct {
	steps int
}

func (o *countingObserver) OnStep(s Sample) { o.steps++ }
