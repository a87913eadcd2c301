package fdm

import "errors"

// Domain errors for simulation setup and stepping.
var (
	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("fdm: invalid state (NaN or Inf detected)")

	// ErrBadMass indicates a non-positive vehicle mass.
	ErrBadMass = errors.New("fdm: mass must be positive")

	// ErrSingularInertia indicates an inertia tensor that cannot be inverted.
	ErrSingularInertia = errors.New("fdm: inertia tensor is singular")

	// ErrBadTimestep indicates a non-positive base timestep.
	ErrBadTimestep = errors.New("fdm: timestep must be positive")

	// ErrBadRateDivisor indicates a model rate divisor below one.
	ErrBadRateDivisor = errors.New("fdm: rate divisor must be at least 1")
)
