package contact

import (
	"math"

	"github.com/san-kum/flightdyn/internal/fdm"
	"github.com/san-kum/flightdyn/internal/frames"
)

// Gear is one ground-contact point fixed to the airframe.
type Gear struct {
	Name     string
	Pos      frames.Vec3 // attachment point, body frame, m
	Friction float64     // friction coefficient for the tangential constraints

	normal  Constraint
	rolling Constraint
	side    Constraint

	inContact bool
}

// InContact reports whether the gear touched the terrain on the last update.
func (g *Gear) InContact() bool { return g.inContact }

// KinematicsSource supplies the gear set with the per-tick kinematic state.
type KinematicsSource interface {
	Snapshot() *fdm.Snapshot
	Altitude() float64 // vehicle reference point above terrain, m
}

// GearSet is the ground-reaction collaborator: it discovers which gears are
// in contact, exposes their constraints to the solver, and folds resolved
// multipliers back into a total reaction force and moment.
type GearSet struct {
	gears  []*Gear
	src    KinematicsSource
	active []*Constraint

	terrainVel    frames.Vec3
	terrainAngVel frames.Vec3

	totalForce  frames.Vec3
	totalMoment frames.Vec3
}

// NewGearSet builds a gear set over a static flat terrain.
func NewGearSet(src KinematicsSource, gears []*Gear) *GearSet {
	return &GearSet{gears: gears, src: src}
}

func (s *GearSet) Name() string { return "ground-reactions" }

// Gears exposes the underlying gear records.
func (s *GearSet) Gears() []*Gear { return s.gears }

// Run refreshes the active constraint sequence from the current kinematic
// state. It is scheduled before the accelerations model so the solver sees
// this tick's contact geometry. It returns true when the step was skipped.
func (s *GearSet) Run(holding bool) bool {
	if holding {
		return true
	}
	s.update(s.src.Snapshot(), s.src.Altitude())
	return false
}

// update rebuilds the active constraints. Each contacting gear contributes a
// unilateral normal constraint and two friction constraints whose bounds are
// linearized around the warm-started normal multiplier.
func (s *GearSet) update(in *fdm.Snapshot, altitude float64) {
	s.active = s.active[:0]

	// Body axes of the local-level frame, used as constraint directions.
	up := in.Tl2b.MulVec(frames.Vec3{0, 0, -1})
	north := in.Tl2b.MulVec(frames.Vec3{1, 0, 0})
	east := in.Tl2b.MulVec(frames.Vec3{0, 1, 0})

	// Height of each gear tip above the terrain: vehicle altitude minus the
	// local-frame down component of the gear arm.
	down := in.Tl2b.Transpose()
	for _, g := range s.gears {
		arm := down.MulVec(g.Pos)
		h := altitude - arm[2]
		g.inContact = h <= 0
		if !g.inContact {
			continue
		}

		g.normal.ForceJacobian = up
		g.normal.MomentJacobian = g.Pos.Cross(up)
		g.normal.Min, g.normal.Max = 0, math.Inf(1)

		// Friction cone linearized around the previous normal reaction.
		limit := g.Friction * math.Max(0, g.normal.Multiplier)
		g.rolling.ForceJacobian = north
		g.rolling.MomentJacobian = g.Pos.Cross(north)
		g.rolling.Min, g.rolling.Max = -limit, limit

		g.side.ForceJacobian = east
		g.side.MomentJacobian = g.Pos.Cross(east)
		g.side.Min, g.side.Max = -limit, limit

		s.active = append(s.active, &g.normal, &g.rolling, &g.side)
	}
}

// Constraints returns the active constraint sequence for this step.
func (s *GearSet) Constraints() []*Constraint { return s.active }

func (s *GearSet) TerrainVelocity() frames.Vec3        { return s.terrainVel }
func (s *GearSet) TerrainAngularVelocity() frames.Vec3 { return s.terrainAngVel }

// SetTerrainMotion overrides the static-terrain default, for moving-surface
// scenarios. Velocities are inertial-relative, ECEF frame.
func (s *GearSet) SetTerrainMotion(vel, angVel frames.Vec3) {
	s.terrainVel = vel
	s.terrainAngVel = angVel
}

// RecomputeForcesFromMultipliers accumulates the resolved reaction into a
// total body-frame force and moment for the next step's aggregation.
func (s *GearSet) RecomputeForcesFromMultipliers() {
	s.totalForce = frames.Vec3{}
	s.totalMoment = frames.Vec3{}
	for _, c := range s.active {
		s.totalForce = s.totalForce.Add(c.ForceJacobian.Scale(c.Multiplier))
		s.totalMoment = s.totalMoment.Add(c.MomentJacobian.Scale(c.Multiplier))
	}
}

// Force returns the total reaction force, body frame.
func (s *GearSet) Force() frames.Vec3 { return s.totalForce }

// Moment returns the total reaction moment, body frame.
func (s *GearSet) Moment() frames.Vec3 { return s.totalMoment }

// ContactCount returns the number of gears currently touching the terrain.
func (s *GearSet) ContactCount() int {
	n := 0
	for _, g := range s.gears {
		if g.inContact {
			n++
		}
	}
	return n
}
