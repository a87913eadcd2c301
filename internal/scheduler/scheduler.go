// Package scheduler drives the rate-gated execution of simulation models.
package scheduler

import (
	"github.com/san-kum/flightdyn/internal/fdm"
)

type entry struct {
	model   fdm.Model
	divisor int
}

// Scheduler invokes each registered model on ticks matching its rate
// divisor, in registration order. The scheduling decision lives here: models
// receive only the holding flag.
type Scheduler struct {
	entries []entry
	tick    uint64
	holding bool
}

func New() *Scheduler {
	return &Scheduler{}
}

// Add registers a model with an execution-rate divisor relative to the base
// tick. A divisor below 1 is clamped to every-tick execution.
func (s *Scheduler) Add(m fdm.Model, divisor int) {
	if divisor < 1 {
		divisor = 1
	}
	s.entries = append(s.entries, entry{model: m, divisor: divisor})
}

// SetHolding pauses or resumes the simulation. The flag takes effect at the
// next tick boundary; a tick in progress always completes.
func (s *Scheduler) SetHolding(h bool) { s.holding = h }

// Holding reports the pause state.
func (s *Scheduler) Holding() bool { return s.holding }

// Tick returns the number of completed ticks.
func (s *Scheduler) Tick() uint64 { return s.tick }

// Step runs one tick: every model whose divisor divides the current tick
// count is invoked, in order.
func (s *Scheduler) Step() {
	for _, e := range s.entries {
		if s.tick%uint64(e.divisor) == 0 {
			e.model.Run(s.holding)
		}
	}
	s.tick++
}
