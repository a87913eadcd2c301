// Package contact models ground reactions as box-bounded contact
// constraints solved by the accelerations model.
package contact

import (
	"github.com/san-kum/flightdyn/internal/frames"
)

// Constraint maps a scalar reaction multiplier onto a body-frame force and
// moment through its Jacobians. The multiplier is persisted on the record
// across steps so the solver can warm-start from the previous solution;
// identity of the record, not its position in the active sequence, carries
// that state.
type Constraint struct {
	ForceJacobian  frames.Vec3
	MomentJacobian frames.Vec3

	// Multiplier is the resolved reaction magnitude, N. Written back by the
	// solver after each resolution.
	Multiplier float64

	// Min and Max bound the multiplier: [0, +Inf) encodes unilateral
	// no-penetration, symmetric bounds encode a linearized friction cone.
	Min, Max float64
}

// Reactions is the ground-reaction collaborator contract consumed by the
// accelerations model. Constraints returns the active constraint sequence
// for the current step; the order is stable within a step. A constraint with
// both Jacobians zero is a contract violation: it would produce a zero
// diagonal in the solver's system matrix.
type Reactions interface {
	Constraints() []*Constraint
	TerrainVelocity() frames.Vec3
	TerrainAngularVelocity() frames.Vec3

	// RecomputeForcesFromMultipliers is invoked by the solver after the
	// multipliers have been resolved, so force aggregation for the next step
	// reflects the resolved reactions.
	RecomputeForcesFromMultipliers()
}
