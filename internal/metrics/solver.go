// Package metrics provides run-level aggregates over simulation samples.
package metrics

import (
	"math"

	"github.com/san-kum/flightdyn/internal/sim"
)

// PeakSolverIterations tracks the worst contact-solver sweep count seen in a
// run; it approaching the iteration cap signals a poorly conditioned contact
// configuration.
type PeakSolverIterations struct {
	peak int
}

func NewPeakSolverIterations() *PeakSolverIterations { return &PeakSolverIterations{} }

func (m *PeakSolverIterations) Name() string { return "solver_iterations_peak" }

func (m *PeakSolverIterations) Observe(s sim.Sample) {
	if s.SolverIterations > m.peak {
		m.peak = s.SolverIterations
	}
}

func (m *PeakSolverIterations) Value() float64 { return float64(m.peak) }
func (m *PeakSolverIterations) Reset()         { m.peak = 0 }

// MeanContacts reports the average number of gears in ground contact.
type MeanContacts struct {
	total   int
	samples int
}

func NewMeanContacts() *MeanContacts { return &MeanContacts{} }

func (m *MeanContacts) Name() string { return "contacts_mean" }

func (m *MeanContacts) Observe(s sim.Sample) {
	m.total += s.Contacts
	m.samples++
}

func (m *MeanContacts) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.total) / float64(m.samples)
}

func (m *MeanContacts) Reset() {
	m.total = 0
	m.samples = 0
}

// PeakResidual tracks the worst final L1 residual of the contact solver; a
// value above the convergence tolerance means at least one resolution ran
// out of iterations.
type PeakResidual struct {
	peak float64
}

func NewPeakResidual() *PeakResidual { return &PeakResidual{} }

func (m *PeakResidual) Name() string { return "solver_residual_peak" }

func (m *PeakResidual) Observe(s sim.Sample) {
	if s.SolverResidual > m.peak {
		m.peak = s.SolverResidual
	}
}

func (m *PeakResidual) Value() float64 { return m.peak }
func (m *PeakResidual) Reset()         { m.peak = 0 }

// TouchdownLoadFactor reports the peak ground reaction as a multiple of the
// vehicle weight, the usual hard-landing figure of merit.
type TouchdownLoadFactor struct {
	weight float64
	peak   float64
}

func NewTouchdownLoadFactor(mass, g float64) *TouchdownLoadFactor {
	return &TouchdownLoadFactor{weight: mass * g}
}

func (m *TouchdownLoadFactor) Name() string { return "load_factor_peak" }

func (m *TouchdownLoadFactor) Observe(s sim.Sample) {
	if m.weight == 0 {
		return
	}
	lf := s.GearForce.Norm() / m.weight
	m.peak = math.Max(m.peak, lf)
}

func (m *TouchdownLoadFactor) Value() float64 { return m.peak }
func (m *TouchdownLoadFactor) Reset()         { m.peak = 0 }
