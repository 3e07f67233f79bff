package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/stabcalc/internal/airframe"
	"github.com/san-kum/stabcalc/internal/log"
)

// Simulator repeats Plane.Tick over a fixed duration, feeding each sample
// to its metrics and observers.
type Simulator struct {
	metrics   []Metric
	observers []Observer
	lg        *log.Logger
}

func New(lg *log.Logger) *Simulator {
	return &Simulator{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		lg:        lg,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Steps is the number of ticks in a run of the given duration.
func Steps(duration float64) int {
	return int(duration/airframe.TickInterval + 0.5)
}

// Run advances p in place. Callers that need to keep the starting plane
// should pass a clone.
func (s *Simulator) Run(ctx context.Context, p *airframe.Plane, cfg Config) (*Result, error) {
	if err := s.validateConfig(p, cfg); err != nil {
		return nil, err
	}

	steps := Steps(cfg.Duration)
	result := &Result{
		States:  make([]State, 0, steps+1),
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}
	if cfg.Gust != nil {
		p.SetGust(cfg.Gust.Offset, cfg.Gust.Force)
	}

	t := 0.0
	x := Sample(p)
	result.States = append(result.States, x)
	result.Times = append(result.Times, t)
	s.lg.Debug("simulation started", "steps", steps, "airspeed", x[Airspeed], "thrust", p.Flight().Thrust)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		for _, m := range s.metrics {
			m.Observe(x, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}

		p.Tick()
		newX := Sample(p)

		if cfg.ValidateState && !newX.IsValid() {
			err := SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"}
			s.lg.Warn("simulation diverged", "step", i, "time", t)
			result.Errors = append(result.Errors, err)
			break
		}

		x = newX
		t += airframe.TickInterval
		result.StepsTaken++

		result.States = append(result.States, x)
		result.Times = append(result.Times, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	s.lg.Debug("simulation finished", "steps", result.StepsTaken, "errors", len(result.Errors))
	return result, nil
}

func (s *Simulator) validateConfig(p *airframe.Plane, cfg Config) error {
	if p == nil {
		return fmt.Errorf("no plane to simulate")
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 1) {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Gust != nil && !(cfg.Gust.Offset >= 0 && cfg.Gust.Offset <= p.Centerline()) {
		return fmt.Errorf("gust offset must lie on the centerline, got %f", cfg.Gust.Offset)
	}
	if cfg.Gust != nil && (math.IsNaN(cfg.Gust.Force) || math.IsInf(cfg.Gust.Force, 0)) {
		return fmt.Errorf("gust force must be finite, got %f", cfg.Gust.Force)
	}
	return nil
}
