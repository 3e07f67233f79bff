package metrics

import (
	"math"

	"github.com/san-kum/stabcalc/internal/sim"
)

// Energy averages the plane's translational kinetic energy, 0.5·m·V².
type Energy struct {
	name        string
	mass        float64
	samples     int
	totalEnergy float64
}

func NewEnergy(mass float64) *Energy {
	return &Energy{
		name: "kinetic_energy",
		mass: mass,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(x sim.State, t float64) {
	v := x[sim.Airspeed]
	e.totalEnergy += 0.5 * e.mass * v * v
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// PeakAirspeed tracks the highest airspeed seen.
type PeakAirspeed struct {
	name string
	peak float64
}

func NewPeakAirspeed() *PeakAirspeed {
	return &PeakAirspeed{name: "peak_airspeed"}
}

func (p *PeakAirspeed) Name() string { return p.name }

func (p *PeakAirspeed) Observe(x sim.State, t float64) {
	p.peak = math.Max(p.peak, x[sim.Airspeed])
}

func (p *PeakAirspeed) Value() float64 { return p.peak }

func (p *PeakAirspeed) Reset() { p.peak = 0 }

// PitchRate tracks the largest absolute angular velocity, deg/s.
type PitchRate struct {
	name string
	max  float64
}

func NewPitchRate() *PitchRate {
	return &PitchRate{name: "max_pitch_rate"}
}

func (p *PitchRate) Name() string { return p.name }

func (p *PitchRate) Observe(x sim.State, t float64) {
	p.max = math.Max(p.max, math.Abs(x[sim.AngularVelocity]))
}

func (p *PitchRate) Value() float64 { return p.max }

func (p *PitchRate) Reset() { p.max = 0 }

// Standard returns the metrics every run records.
func Standard(mass float64) []sim.Metric {
	return []sim.Metric{
		NewStability(15),
		NewEnergy(mass),
		NewPeakAirspeed(),
		NewPitchRate(),
		NewMeanDrag(),
	}
}
