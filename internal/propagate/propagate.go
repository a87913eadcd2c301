// Package propagate owns the vehicle kinematic state and the rotation
// operators derived from it. Each tick it advances position, velocity and
// attitude from the most recent acceleration derivatives, then refreshes the
// shared snapshot borrowed by the other models.
package propagate

import (
	"math"

	"github.com/san-kum/flightdyn/internal/fdm"
	"github.com/san-kum/flightdyn/internal/frames"
	"github.com/san-kum/flightdyn/internal/gravity"
)

// Scheme selects the integration rule for the kinematic state.
type Scheme int

const (
	// RectEuler is the explicit rectangular Euler rule.
	RectEuler Scheme = iota
	// Trapezoidal averages the current and previous derivative.
	Trapezoidal
)

// DerivativeSource exposes the derivatives consumed by the integration step.
// It is satisfied by the accelerations model.
type DerivativeSource interface {
	UVWIDot() frames.Vec3
	PQRIDot() frames.Vec3
	QDot() frames.Quat
}

// State is the propagated kinematic state.
type State struct {
	InertialPosition frames.Vec3 // inertial frame, m
	InertialVelocity frames.Vec3 // inertial frame, m/s
	Attitude         frames.Quat // body relative to inertial
	PQRi             frames.Vec3 // inertial angular rate, body frame, rad/s
	RotationAngle    float64     // planet rotation angle since epoch, rad
}

// Propagate integrates the kinematic state and maintains the snapshot.
type Propagate struct {
	in      *fdm.Snapshot
	src     DerivativeSource
	scheme  Scheme
	divisor int

	state State

	// previous derivatives for the trapezoidal rule
	prevVdot frames.Vec3
	prevWdot frames.Vec3
	prevQdot frames.Quat
	havePrev bool

	terrainRadius float64
}

// New builds the provider from an initial state. The snapshot is allocated
// here and shared by reference with the other models; rateDivisor gates this
// provider's own integration step.
func New(initial State, dt float64, rateDivisor int) *Propagate {
	if rateDivisor < 1 {
		rateDivisor = 1
	}
	p := &Propagate{
		in:            &fdm.Snapshot{DeltaT: dt, RateDivisor: 1},
		divisor:       rateDivisor,
		state:         initial,
		terrainRadius: gravity.SemiMajorAxis,
	}
	p.state.Attitude = p.state.Attitude.Normalize()
	p.refresh()
	return p
}

func (p *Propagate) Name() string { return "propagate" }

// Snapshot returns the shared kinematic snapshot. Models keep the pointer;
// the contents are rewritten each tick.
func (p *Propagate) Snapshot() *fdm.Snapshot { return p.in }

// State returns a copy of the propagated state.
func (p *Propagate) State() State { return p.state }

// SetSource binds the derivative source used by the integration step.
func (p *Propagate) SetSource(src DerivativeSource) { p.src = src }

// SetScheme selects the integration rule.
func (p *Propagate) SetScheme(s Scheme) { p.scheme = s }

// SetMassProperties stores the vehicle mass and inertia in the snapshot.
// The inverse tensor is computed once by the configuration layer and assumed
// valid for the whole run.
func (p *Propagate) SetMassProperties(mass float64, j, jinv frames.Mat3) {
	p.in.Mass = mass
	p.in.J = j
	p.in.Jinv = jinv
}

// SetForces writes this tick's aggregated external force and moment,
// body frame. Ground reactions are not included: they enter through the
// contact resolver.
func (p *Propagate) SetForces(force, moment frames.Vec3) {
	p.in.Force = force
	p.in.Moment = moment
}

// Run advances the state by one step and refreshes the snapshot.
func (p *Propagate) Run(holding bool) bool {
	if holding {
		return true
	}

	dt := p.in.DeltaT * float64(p.divisor)
	vdot := p.src.UVWIDot()
	wdot := p.src.PQRIDot()
	qdot := p.src.QDot()

	if p.scheme == Trapezoidal && p.havePrev {
		vdot = vdot.Add(p.prevVdot).Scale(0.5)
		wdot = wdot.Add(p.prevWdot).Scale(0.5)
		qdot = qdot.Add(p.prevQdot).Scale(0.5)
	}
	p.prevVdot = p.src.UVWIDot()
	p.prevWdot = p.src.PQRIDot()
	p.prevQdot = p.src.QDot()
	p.havePrev = true

	st := &p.state
	st.InertialPosition = st.InertialPosition.Add(st.InertialVelocity.Scale(dt))
	st.InertialVelocity = st.InertialVelocity.Add(vdot.Scale(dt))
	st.PQRi = st.PQRi.Add(wdot.Scale(dt))
	st.Attitude = st.Attitude.Add(qdot.Scale(dt)).Normalize()
	st.RotationAngle += p.in.OmegaPlanet.Norm() * dt

	p.refresh()
	return false
}

// refresh recomputes every derived snapshot field from the state.
func (p *Propagate) refresh() {
	in := p.in
	st := &p.state

	in.OmegaPlanet = frames.Vec3{0, 0, gravity.RotationRate}
	in.AttitudeECI = st.Attitude
	in.InertialPosition = st.InertialPosition
	in.PQRi = st.PQRi

	in.Ti2b = st.Attitude.Mat()
	in.Tb2i = in.Ti2b.Transpose()

	ti2ec := frames.R3(st.RotationAngle)
	in.Tec2b = in.Ti2b.MulMat(ti2ec.Transpose())

	posECEF := ti2ec.MulVec(st.InertialPosition)
	lat := math.Atan2(posECEF[2], math.Hypot(posECEF[0], posECEF[1]))
	lon := math.Atan2(posECEF[1], posECEF[0])
	in.Tl2b = in.Tec2b.MulMat(frames.LocalLevel(lat, lon).Transpose())

	in.PQR = st.PQRi.Sub(in.Ti2b.MulVec(in.OmegaPlanet))

	velECEF := st.InertialVelocity.Sub(in.OmegaPlanet.Cross(st.InertialPosition))
	in.UVW = in.Ti2b.MulVec(velECEF)

	r := st.InertialPosition.Norm()
	in.LocalGravity = gravity.LocalMagnitude(r)
	in.GravityJ2 = gravity.J2Vector(posECEF)
}

// Altitude returns the vehicle reference point height above the terrain
// sphere, m.
func (p *Propagate) Altitude() float64 {
	return p.state.InertialPosition.Norm() - p.terrainRadius
}

// SetTerrainRadius overrides the terrain sphere radius.
func (p *Propagate) SetTerrainRadius(r float64) { p.terrainRadius = r }

// Valid reports whether the propagated state is free of NaN and Inf.
func (p *Propagate) Valid() bool {
	return p.state.InertialPosition.IsValid() &&
		p.state.InertialVelocity.IsValid() &&
		p.state.PQRi.IsValid() &&
		!math.IsNaN(p.state.Attitude.Norm())
}
