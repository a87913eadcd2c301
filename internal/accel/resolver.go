package accel

import (
	"math"

	"github.com/san-kum/flightdyn/internal/contact"
	"github.com/san-kum/flightdyn/internal/frames"
)

const (
	// maxIterations caps the projected Gauss-Seidel sweep count. Running out
	// of iterations is not an error: the multipliers are then the best
	// available approximation.
	maxIterations = 50

	// convergenceTol is the absolute L1 tolerance on the per-sweep multiplier
	// change, in newtons.
	convergenceTol = 1e-5
)

// SolverStats reports the contact resolution of the last step.
type SolverStats struct {
	Iterations int     // Gauss-Seidel sweeps used
	Residual   float64 // L1 norm of the last sweep's multiplier change
	Contacts   int     // active constraint count
}

// resolveContactForces corrects the raw derivatives so the reactions
// transmitted through the active contact constraints stay inside their
// bounds. The bounded complementarity problem is approximated with the
// projected Gauss-Seidel method over the Lagrange multipliers, warm-started
// from the previous step's solution.
//
// With dt > 0 the right-hand side carries a stabilization term that drives
// residual sliding and penetration velocity to zero over one step; dt == 0
// (derivative initialization) solves on accelerations alone.
func (a *Accelerations) resolveContactForces(dt float64) {
	cs := a.reactions.Constraints()
	n := len(cs)
	a.stats = SolverStats{Contacts: n}
	if n == 0 {
		return
	}

	in := a.in
	invMass := 1.0 / in.Mass

	am := complianceMatrix(cs, invMass, in.Jinv)

	// Rate the constraints must resist: the raw derivatives, plus the
	// stabilization term canceling relative motion against the terrain.
	vdot := a.uvwDot
	wdot := a.pqrDot
	if dt > 0 {
		vdot = vdot.Add(in.UVW.Sub(in.Tec2b.MulVec(a.reactions.TerrainVelocity())).Scale(1 / dt))
		wdot = wdot.Add(in.PQR.Sub(in.Tec2b.MulVec(a.reactions.TerrainAngularVelocity())).Scale(1 / dt))
	}

	// Normalize each row by its diagonal, saving one division per unknown in
	// every Gauss-Seidel sweep.
	rhs := make([]float64, n)
	for i := 0; i < n; i++ {
		d := 1.0 / am[i*n+i]
		rhs[i] = -(cs[i].ForceJacobian.Dot(vdot) + cs[i].MomentJacobian.Dot(wdot)) * d
		for j := 0; j < n; j++ {
			am[i*n+j] *= d
		}
	}

	lambda := make([]float64, n)
	for i, c := range cs {
		lambda[i] = c.Multiplier
	}

	for iter := 0; iter < maxIterations; iter++ {
		norm := 0.0

		for i := 0; i < n; i++ {
			lambda0 := lambda[i]
			dl := rhs[i]
			for j := 0; j < n; j++ {
				dl -= am[i*n+j] * lambda[j]
			}
			lambda[i] = clamp(lambda0+dl, cs[i].Min, cs[i].Max)
			norm += math.Abs(lambda[i] - lambda0)
		}

		a.stats.Iterations = iter + 1
		a.stats.Residual = norm
		if norm < convergenceTol {
			break
		}
	}

	// Fold the resolved reactions back into the derivatives.
	var fc, mc frames.Vec3
	for i, c := range cs {
		fc = fc.Add(c.ForceJacobian.Scale(lambda[i]))
		mc = mc.Add(c.MomentJacobian.Scale(lambda[i]))
	}

	dv := fc.Scale(invMass)
	dw := in.Jinv.MulVec(mc)

	a.uvwDot = a.uvwDot.Add(dv)
	a.uvwiDot = a.uvwiDot.Add(in.Tb2i.MulVec(dv))
	a.pqrDot = a.pqrDot.Add(dw)
	a.pqriDot = a.pqriDot.Add(dw)

	// Persist the multipliers on the constraint records for the next step's
	// warm start, then let the collaborator refresh its reaction forces.
	for i, c := range cs {
		c.Multiplier = lambda[i]
	}
	a.reactions.RecomputeForcesFromMultipliers()
}

// complianceMatrix assembles J*M^-1*J^T, the generalized compliance between
// contacts. With a single rigid body it is dense; only the upper triangle is
// computed, the rest is filled in by symmetry.
func complianceMatrix(cs []*contact.Constraint, invMass float64, jinv frames.Mat3) []float64 {
	n := len(cs)
	am := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			am[i*n+j] = am[j*n+i]
		}
		for j := i; j < n; j++ {
			am[i*n+j] = cs[i].ForceJacobian.Dot(cs[j].ForceJacobian.Scale(invMass)) +
				cs[i].MomentJacobian.Dot(jinv.MulVec(cs[j].MomentJacobian))
		}
	}
	return am
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
