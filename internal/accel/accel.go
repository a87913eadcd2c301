// Package accel computes the derivatives of the rotational and translational
// rates and of the attitude quaternion, then corrects them for ground
// reactions through bounded contact constraints.
//
// The model owns [Accelerations], the only mutable output record of the per
// step computation. Its values reflect the most recent completed step and are
// undefined before the first call to [Accelerations.InitializeDerivatives].
package accel

import (
	"github.com/san-kum/flightdyn/internal/contact"
	"github.com/san-kum/flightdyn/internal/fdm"
	"github.com/san-kum/flightdyn/internal/frames"
	"github.com/san-kum/flightdyn/internal/gravity"
)

// Accelerations holds the derivative state advanced by the integrator.
// PQR refers to body angular rate, UVW to body translational velocity; the
// "i" variants are relative to the inertial frame, the plain variants
// relative to the rotating planet frame.
type Accelerations struct {
	in        *fdm.Snapshot
	reactions contact.Reactions
	gravModel gravity.Model

	pqrDot  frames.Vec3 // ECEF-relative angular acceleration, body frame
	pqriDot frames.Vec3 // inertial angular acceleration, body frame
	uvwDot  frames.Vec3 // ECEF-relative translational acceleration, body frame
	uvwiDot frames.Vec3 // inertial translational acceleration, inertial frame
	qDot    frames.Quat // attitude quaternion derivative

	gravAccel frames.Vec3 // gravitation, body frame
	bodyAccel frames.Vec3 // non-gravitational acceleration, body frame

	stats SolverStats
}

// New builds the accelerations model over a borrowed kinematic snapshot and
// the ground-reaction collaborator. The snapshot contents are refreshed by
// the kinematics provider before each scheduled run.
func New(in *fdm.Snapshot, reactions contact.Reactions) *Accelerations {
	return &Accelerations{
		in:        in,
		reactions: reactions,
		gravModel: gravity.WGS84,
	}
}

func (a *Accelerations) Name() string { return "accelerations" }

// Run executes one step: the three derivative computations followed by the
// contact resolution, in that order. The scheduling decision is made by the
// caller; holding pauses the model, leaving the derivative state untouched.
// It returns true when the step was skipped.
func (a *Accelerations) Run(holding bool) bool {
	if holding {
		return true
	}

	a.computePQRDot()
	a.computeUVWDot()
	a.computeQuatDot()

	a.resolveContactForces(a.in.DeltaT * float64(a.in.RateDivisor))
	return false
}

// InitializeDerivatives performs one dt=0 pass so the integrator starts from
// valid derivatives instead of a cold zero state. With dt=0 the contact
// stabilization term is omitted.
func (a *Accelerations) InitializeDerivatives() {
	a.computePQRDot()
	a.computeUVWDot()
	a.computeQuatDot()
	a.resolveContactForces(0)
}

// computePQRDot applies Euler's rotation equation in the body frame. Using
// the inertial angular velocity avoids spurious centrifugal terms from the
// planet rotation; the transport theorem then removes the planet-rotation
// contribution for the ECEF-relative derivative.
func (a *Accelerations) computePQRDot() {
	in := a.in
	a.pqriDot = in.Jinv.MulVec(in.Moment.Sub(in.PQRi.Cross(in.J.MulVec(in.PQRi))))
	a.pqrDot = a.pqriDot.Sub(in.PQRi.Cross(in.Ti2b.MulVec(in.OmegaPlanet)))
}

// computeUVWDot combines the applied force with the Coriolis, centripetal
// and gravitation contributions for the ECEF-relative derivative. The
// inertial derivative has no fictitious-force terms.
func (a *Accelerations) computeUVWDot() {
	in := a.in

	a.bodyAccel = in.Force.Scale(1 / in.Mass)

	omegaBody := in.Ti2b.MulVec(in.OmegaPlanet)
	a.uvwDot = a.bodyAccel.Sub(in.PQR.Add(omegaBody.Scale(2)).Cross(in.UVW))

	centripetal := in.OmegaPlanet.Cross(in.OmegaPlanet.Cross(in.InertialPosition))
	a.uvwDot = a.uvwDot.Sub(in.Ti2b.MulVec(centripetal))

	a.gravAccel = gravity.Accel(a.gravModel, in)
	a.uvwDot = a.uvwDot.Add(a.gravAccel)

	a.uvwiDot = in.Tb2i.MulVec(a.bodyAccel.Add(a.gravAccel))
}

// computeQuatDot evaluates the attitude kinematic derivative on the current
// inertial body rate.
func (a *Accelerations) computeQuatDot() {
	a.qDot = a.in.AttitudeECI.QDot(a.in.PQRi)
}

// PQRDot returns the ECEF-relative angular acceleration, body frame.
func (a *Accelerations) PQRDot() frames.Vec3 { return a.pqrDot }

// PQRIDot returns the inertial angular acceleration, body frame.
func (a *Accelerations) PQRIDot() frames.Vec3 { return a.pqriDot }

// UVWDot returns the ECEF-relative translational acceleration, body frame.
func (a *Accelerations) UVWDot() frames.Vec3 { return a.uvwDot }

// UVWIDot returns the inertial translational acceleration, inertial frame.
func (a *Accelerations) UVWIDot() frames.Vec3 { return a.uvwiDot }

// QDot returns the attitude quaternion derivative.
func (a *Accelerations) QDot() frames.Quat { return a.qDot }

// GravAccel returns the gravitation acceleration, body frame.
func (a *Accelerations) GravAccel() frames.Vec3 { return a.gravAccel }

// BodyAccel returns the non-gravitational acceleration, body frame.
func (a *Accelerations) BodyAccel() frames.Vec3 { return a.bodyAccel }

// Axis indices for the scalar accessors.
const (
	P = iota
	Q
	R
)

const (
	U = iota
	V
	W
)

// PQRDotAt returns one axis of the ECEF-relative angular acceleration.
func (a *Accelerations) PQRDotAt(axis int) float64 { return a.pqrDot[axis] }

// UVWDotAt returns one axis of the ECEF-relative translational acceleration.
func (a *Accelerations) UVWDotAt(axis int) float64 { return a.uvwDot[axis] }

// GravityModel returns the active gravitation model.
func (a *Accelerations) GravityModel() gravity.Model { return a.gravModel }

// SetGravityModel switches the gravitation model; the change takes effect on
// the next evaluation with no blending.
func (a *Accelerations) SetGravityModel(m gravity.Model) { a.gravModel = m }

// Stats returns the contact-solver counters for the last resolution.
func (a *Accelerations) Stats() SolverStats { return a.stats }
