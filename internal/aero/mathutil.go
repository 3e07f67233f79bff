package aero

import (
	"math"

	"golang.org/x/exp/constraints"
)

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// Round rounds v to the given number of decimal places.
func Round[V constraints.Float](v V, places int) V {
	p := math.Pow(10, float64(places))
	return V(math.Round(float64(v)*p) / p)
}
