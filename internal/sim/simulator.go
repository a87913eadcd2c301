// Package sim assembles the flight-dynamics models into a runnable
// simulation.
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe: the whole tick runs synchronously
// on the calling goroutine and the models share one kinematic snapshot. The
// holding flag is the only pause mechanism and takes effect at tick
// boundaries only.
package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/san-kum/flightdyn/internal/accel"
	"github.com/san-kum/flightdyn/internal/config"
	"github.com/san-kum/flightdyn/internal/contact"
	"github.com/san-kum/flightdyn/internal/fdm"
	"github.com/san-kum/flightdyn/internal/frames"
	"github.com/san-kum/flightdyn/internal/gravity"
	"github.com/san-kum/flightdyn/internal/propagate"
	"github.com/san-kum/flightdyn/internal/scheduler"
)

// Simulator wires the kinematics provider, ground reactions and the
// accelerations model under the rate scheduler.
type Simulator struct {
	cfg   *config.Config
	prop  *propagate.Propagate
	gears *contact.GearSet
	acc   *accel.Accelerations
	sched *scheduler.Scheduler

	metrics   []Metric
	observers []Observer
	log       zerolog.Logger

	touchedDown bool
}

// New builds a simulator from a validated configuration.
func New(cfg *config.Config, log zerolog.Logger) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	j, jinv, err := cfg.InertiaTensors()
	if err != nil {
		return nil, err
	}

	st, err := initialState(cfg)
	if err != nil {
		return nil, err
	}

	prop := propagate.New(st, cfg.Dt, cfg.Rates.Propagate)
	prop.SetMassProperties(cfg.Vehicle.Mass, j, jinv)
	// Anchor the terrain sphere at the initial geodetic radius, so the
	// configured altitude holds at any latitude on the ellipsoid.
	prop.SetTerrainRadius(st.InertialPosition.Norm() - cfg.Initial.Altitude)
	// The snapshot divisor scales the contact stabilization horizon of the
	// accelerations model.
	prop.Snapshot().RateDivisor = cfg.Rates.Accelerations

	switch cfg.Integrator {
	case "", "trapezoidal":
		prop.SetScheme(propagate.Trapezoidal)
	case "euler":
		prop.SetScheme(propagate.RectEuler)
	default:
		return nil, fmt.Errorf("sim: unknown integrator %q", cfg.Integrator)
	}

	gears := make([]*contact.Gear, len(cfg.Gears))
	for i, g := range cfg.Gears {
		gears[i] = &contact.Gear{
			Name:     g.Name,
			Pos:      frames.Vec3{g.X, g.Y, g.Z},
			Friction: g.Friction,
		}
	}
	gearSet := contact.NewGearSet(prop, gears)

	acc := accel.New(prop.Snapshot(), gearSet)
	gravModel, err := gravity.ParseModel(cfg.Gravity)
	if err != nil {
		return nil, err
	}
	acc.SetGravityModel(gravModel)
	prop.SetSource(acc)

	sched := scheduler.New()
	sched.Add(prop, cfg.Rates.Propagate)
	sched.Add(gearSet, cfg.Rates.Contact)
	sched.Add(acc, cfg.Rates.Accelerations)

	s := &Simulator{
		cfg:   cfg,
		prop:  prop,
		gears: gearSet,
		acc:   acc,
		sched: sched,
		log:   log,
	}

	// Populate the derivative state before the first integration step: one
	// contact refresh and one dt=0 pass over the accelerations.
	gearSet.Run(false)
	acc.InitializeDerivatives()

	return s, nil
}

// initialState places the vehicle at the configured geodetic position at
// planet-rotation epoch zero, co-rotating with the planet, aligned to the
// local-level frame by the configured Euler angles.
func initialState(cfg *config.Config) (propagate.State, error) {
	posECEF := cfg.ECEFPosition()
	if !posECEF.IsValid() || posECEF.Norm() == 0 {
		return propagate.State{}, fdm.ErrInvalidState
	}

	lat := math.Atan2(posECEF[2], math.Hypot(posECEF[0], posECEF[1]))
	lon := math.Atan2(posECEF[1], posECEF[0])
	tec2l := frames.LocalLevel(lat, lon)

	// At epoch the ECEF and inertial frames coincide.
	tl2b := frames.FromEuler(cfg.Initial.Roll, cfg.Initial.Pitch, cfg.Initial.Yaw).Mat()
	ti2b := tl2b.MulMat(tec2l)

	omega := frames.Vec3{0, 0, gravity.RotationRate}
	down := tec2l.Transpose().MulVec(frames.Vec3{0, 0, 1})

	return propagate.State{
		InertialPosition: posECEF,
		InertialVelocity: omega.Cross(posECEF).Add(down.Scale(cfg.Initial.DescentRate)),
		Attitude:         frames.FromMat(ti2b),
		PQRi:             ti2b.MulVec(omega),
	}, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Accelerations exposes the derivative state, for introspection.
func (s *Simulator) Accelerations() *accel.Accelerations { return s.acc }

// Gears exposes the ground-reaction collaborator.
func (s *Simulator) Gears() *contact.GearSet { return s.gears }

// SetHolding pauses or resumes the run at the next tick boundary.
func (s *Simulator) SetHolding(h bool) { s.sched.SetHolding(h) }

// Run executes the configured duration and collects the result. The context
// is checked between ticks; a tick itself is atomic.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	steps := int(s.cfg.Duration / s.cfg.Dt)
	result := &Result{
		Samples: make([]Sample, 0, steps),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	s.log.Info().
		Float64("dt", s.cfg.Dt).
		Float64("duration", s.cfg.Duration).
		Str("gravity", s.acc.GravityModel().String()).
		Int("gears", len(s.cfg.Gears)).
		Msg("run started")

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		s.sched.Step()
		result.StepsTaken++

		sample := s.sample(float64(i+1) * s.cfg.Dt)
		s.observe(sample)
		result.Samples = append(result.Samples, sample)

		if !s.prop.Valid() {
			err := fmt.Errorf("%w at t=%.4f", fdm.ErrInvalidState, sample.T)
			result.Errors = append(result.Errors, err)
			s.log.Error().Err(err).Msg("run aborted")
			break
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.log.Info().Int("steps", result.StepsTaken).Msg("run finished")
	return result, nil
}

func (s *Simulator) sample(t float64) Sample {
	in := s.prop.Snapshot()
	stats := s.acc.Stats()
	return Sample{
		T:                t,
		Altitude:         s.prop.Altitude(),
		UVW:              in.UVW,
		UVWDot:           s.acc.UVWDot(),
		PQRDot:           s.acc.PQRDot(),
		Contacts:         s.gears.ContactCount(),
		SolverIterations: stats.Iterations,
		SolverResidual:   stats.Residual,
		GearForce:        s.gears.Force(),
		GearMoment:       s.gears.Moment(),
	}
}

func (s *Simulator) observe(sample Sample) {
	if !s.touchedDown && sample.Contacts > 0 {
		s.touchedDown = true
		s.log.Info().
			Float64("t", sample.T).
			Float64("sink_rate", sample.UVW[2]).
			Int("contacts", sample.Contacts).
			Msg("touchdown")
	}

	for _, m := range s.metrics {
		m.Observe(sample)
	}
	for _, o := range s.observers {
		o.OnStep(sample)
	}
}
