package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/stabcalc/internal/airframe"
)

// State is one sample of a plane's motion. Index it with the constants
// below.
type State []float64

const (
	Airspeed = iota
	Pitch
	AngularVelocity
	AngularAcceleration
	Drag
	Lift
	StateDim
)

// StateNames labels each State index, in order.
var StateNames = []string{
	"airspeed", "pitch", "angular_velocity", "angular_acceleration", "drag", "lift",
}

// Sample reads the current motion of p.
func Sample(p *airframe.Plane) State {
	x := make(State, StateDim)
	x[Airspeed] = p.Flight().Airspeed
	x[Pitch] = p.Flight().Pitch
	x[AngularVelocity] = p.AngularVelocity()
	x[AngularAcceleration] = p.AngularAcceleration()
	x[Drag] = p.Drag()
	x[Lift] = p.Lift()
	return x
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Config struct {
	Duration      float64
	ValidateState bool
	// Gust, when set, is applied to the plane for the whole run.
	Gust *airframe.Gust
}

func DefaultConfig() Config {
	return Config{Duration: 10.0, ValidateState: true}
}

type Result struct {
	States     []State
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Final returns the last recorded state.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

// Series extracts one State index across the run.
func (r *Result) Series(idx int) []float64 {
	out := make([]float64, len(r.States))
	for i, x := range r.States {
		out[i] = x[idx]
	}
	return out
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
