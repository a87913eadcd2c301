package fdm

import "github.com/san-kum/flightdyn/internal/frames"

// Snapshot is the kinematic input state for one simulation step. All vector
// quantities are expressed in the frame named by the field comment. The
// snapshot is read-only for the models that borrow it; only the kinematics
// provider writes it, once per tick, before any model runs.
type Snapshot struct {
	Mass float64 // vehicle mass, kg

	J    frames.Mat3 // inertia tensor, body frame, kg m^2
	Jinv frames.Mat3 // inverse inertia tensor, body frame

	Force  frames.Vec3 // net external force, body frame, N
	Moment frames.Vec3 // net external moment, body frame, N m

	PQR  frames.Vec3 // angular velocity relative to the ECEF frame, body frame, rad/s
	PQRi frames.Vec3 // angular velocity relative to the inertial frame, body frame, rad/s
	UVW  frames.Vec3 // velocity relative to the ECEF frame, body frame, m/s

	InertialPosition frames.Vec3 // position from planet center, inertial frame, m
	OmegaPlanet      frames.Vec3 // planet angular rate, inertial frame, rad/s

	Ti2b  frames.Mat3 // inertial to body
	Tb2i  frames.Mat3 // body to inertial
	Tl2b  frames.Mat3 // local-level to body
	Tec2b frames.Mat3 // ECEF to body

	AttitudeECI frames.Quat // body attitude relative to the inertial frame

	LocalGravity float64     // gravity magnitude along local vertical, m/s^2
	GravityJ2    frames.Vec3 // J2 gravitation at the current position, ECEF frame, m/s^2

	DeltaT      float64 // base scheduler step, s
	RateDivisor int     // tick divisor of the consuming model, scales its effective step
}

// Model is a simulation component driven by the scheduler. Run is invoked
// only on the model's scheduled ticks; holding reports that the simulation
// is paused, in which case the model returns without computing.
type Model interface {
	Name() string
	Run(holding bool) bool
}
