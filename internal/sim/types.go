package sim

import "github.com/san-kum/flightdyn/internal/frames"

// Sample is the per-tick record handed to metrics and observers.
type Sample struct {
	T        float64
	Altitude float64

	UVW    frames.Vec3 // ECEF-relative velocity, body frame
	UVWDot frames.Vec3 // resolved translational acceleration, body frame
	PQRDot frames.Vec3 // resolved angular acceleration, body frame

	Contacts         int
	SolverIterations int
	SolverResidual   float64

	GearForce  frames.Vec3 // total ground reaction, body frame
	GearMoment frames.Vec3
}

// Metric aggregates a scalar over a run.
type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Observer receives every sample, for live views and storage.
type Observer interface {
	OnStep(s Sample)
}

// Result collects the outcome of a run.
type Result struct {
	Samples    []Sample
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}
