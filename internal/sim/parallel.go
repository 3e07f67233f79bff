package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/stabcalc/internal/airframe"
)

// Sweep runs one simulation per thrust setting, each on its own clone of
// the plane, concurrently.
type Sweep struct {
	base    *Simulator
	thrusts []float64
	// NewMetrics supplies fresh metrics per run; metrics hold state and
	// cannot be shared between goroutines.
	NewMetrics func() []Metric
}

func NewSweep(s *Simulator, thrusts []float64) *Sweep {
	return &Sweep{base: s, thrusts: thrusts}
}

func (sw *Sweep) Run(ctx context.Context, p *airframe.Plane, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(sw.thrusts))

	eg, ctx := errgroup.WithContext(ctx)
	for i, thrust := range sw.thrusts {
		plane := p.Clone()
		plane.SetThrust(thrust)
		eg.Go(func() error {
			sim := New(sw.base.lg)
			if sw.NewMetrics != nil {
				for _, m := range sw.NewMetrics() {
					sim.AddMetric(m)
				}
			}
			r, err := sim.Run(ctx, plane, cfg)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
