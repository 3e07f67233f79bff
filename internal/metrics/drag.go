package metrics

import (
	"github.com/san-kum/stabcalc/internal/sim"
)

// MeanDrag averages the total drag over a run.
type MeanDrag struct {
	name    string
	sum     float64
	samples int
}

func NewMeanDrag() *MeanDrag {
	return &MeanDrag{
		name: "mean_drag",
	}
}

func (c *MeanDrag) Name() string {
	return c.name
}

func (c *MeanDrag) Observe(x sim.State, t float64) {
	c.sum += x[sim.Drag]
	c.samples++
}

func (c *MeanDrag) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *MeanDrag) Reset() {
	c.sum = 0
	c.samples = 0
}
