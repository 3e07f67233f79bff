package metrics

import (
	"math"

	"github.com/san-kum/stabcalc/internal/sim"
)

// Stability is the fraction of samples whose pitch stays within threshold
// degrees of level.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "pitch_stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x sim.State, t float64) {
	s.samples++
	if math.Abs(x[sim.Pitch]) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
