// Package aero converts discrete polar tables into continuous coefficient
// functions and derives neutral-point estimates from them. Every function
// here is pure.
package aero

import (
	"math"
	"slices"
)

// Table maps a Reynolds number to a coefficient curve keyed by angle of
// attack in degrees. Angle keys are rounded with RoundAOA.
type Table map[float64]map[float64]float64

const (
	// AOAStep is the spacing of every angle-of-attack grid.
	AOAStep = 0.1
	// SlopeStep is the forward-difference step used by LiftSlope.
	SlopeStep = 0.01
)

// DefaultAOAGrid is the grid Lerp2D brackets angles on: -14 to +12 deg.
var DefaultAOAGrid = Grid(-140, 120)

// Grid returns the angles from lo/10 to hi/10 degrees inclusive, built from
// integer tenths so that every value matches RoundAOA exactly.
func Grid(loTenths, hiTenths int) []float64 {
	if hiTenths < loTenths {
		return nil
	}
	g := make([]float64, 0, hiTenths-loTenths+1)
	for k := loTenths; k <= hiTenths; k++ {
		g = append(g, RoundAOA(float64(k)*AOAStep))
	}
	return g
}

// RoundAOA normalizes an angle so it can be used as a Table key.
func RoundAOA(a float64) float64 { return Round(a, 2) }

// NearestBracket returns the two ordered values bracketing x. Below the
// minimum it returns the two smallest values and above the maximum the two
// largest, so callers extrapolate along the nearest segment. With fewer than
// two values both results are the single value (or zero).
func NearestBracket(x float64, values []float64) (float64, float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], values[0]
	}
	v := values
	if !slices.IsSorted(v) {
		v = slices.Sorted(slices.Values(values))
	}
	n := len(v)
	if x <= v[0] {
		return v[0], v[1]
	}
	if x >= v[n-1] {
		return v[n-2], v[n-1]
	}
	i, _ := slices.BinarySearch(v, x)
	return v[i-1], v[i]
}

// Lerp1D interpolates linearly through (x1, y1) and (x2, y2). Coincident
// abscissae yield y1.
func Lerp1D(x, x1, y1, x2, y2 float64) float64 {
	if x1 == x2 {
		return y1
	}
	return ((x2-x)/(x2-x1))*y1 + ((x-x1)/(x2-x1))*y2
}

// Reynolds returns the sorted Reynolds keys of t.
func (t Table) Reynolds() []float64 {
	keys := make([]float64, 0, len(t))
	for re := range t {
		keys = append(keys, re)
	}
	slices.Sort(keys)
	return keys
}

// Lerp2D interpolates t at (reynolds, aoa) on DefaultAOAGrid.
func Lerp2D(t Table, reynolds, aoa float64) float64 {
	return Lerp2DOnGrid(t, reynolds, aoa, DefaultAOAGrid)
}

// Lerp2DOnGrid brackets both axes with NearestBracket and interpolates
// bilinearly: first along Reynolds number at each bracketing angle, then
// along the angle. Every bracketing Reynolds key must hold every grid angle;
// a missing knot yields NaN.
func Lerp2DOnGrid(t Table, reynolds, aoa float64, grid []float64) float64 {
	if len(t) == 0 || len(grid) == 0 {
		return math.NaN()
	}
	re1, re2 := NearestBracket(reynolds, t.Reynolds())
	a1, a2 := NearestBracket(aoa, grid)

	f11, ok11 := t[re1][a1]
	f12, ok12 := t[re1][a2]
	f21, ok21 := t[re2][a1]
	f22, ok22 := t[re2][a2]
	if !(ok11 && ok12 && ok21 && ok22) {
		return math.NaN()
	}

	fA1 := Lerp1D(reynolds, re1, f11, re2, f21)
	fA2 := Lerp1D(reynolds, re1, f12, re2, f22)
	return Lerp1D(aoa, a1, fA1, a2, fA2)
}

// LiftSlope approximates dCl/dalpha (per degree) with a forward difference.
func LiftSlope(t Table, reynolds, aoa, step float64) float64 {
	if step == 0 {
		step = SlopeStep
	}
	f := Lerp2D(t, reynolds, aoa)
	fh := Lerp2D(t, reynolds, aoa+step)
	return (fh - f) / step
}
