package aero

import "math"

// NeutralPointInput gathers the terms of the tail-volume neutral point
// formula for a wing/tail pair.
type NeutralPointInput struct {
	WingPolar, TailPolar Table
	ReWing, ReTail       float64
	AOAWing, AOATail     float64
	TailArm              float64 // distance between wing and tail aerodynamic centres
	WingArea, TailArea   float64
	Downwash             float64 // fraction of the wing's angle of attack
}

// NeutralPointFromPolars returns the neutral point aft of the wing's
// aerodynamic centre:
//
//	NP = a_t·(1-eps)·S_H·l_H / (S·a)
//
// where a and a_t are the lift slopes at the current Reynolds numbers and
// angles. It returns NaN when either table is empty, a Reynolds number is
// not positive, or the wing lift slope is zero.
func NeutralPointFromPolars(in NeutralPointInput) float64 {
	if len(in.WingPolar) == 0 || len(in.TailPolar) == 0 {
		return math.NaN()
	}
	if !(in.ReWing > 0) || !(in.ReTail > 0) || !(in.WingArea > 0) {
		return math.NaN()
	}
	a := LiftSlope(in.WingPolar, in.ReWing, in.AOAWing, SlopeStep)
	at := LiftSlope(in.TailPolar, in.ReTail, in.AOATail, SlopeStep)
	if a == 0 || math.IsNaN(a) || math.IsNaN(at) {
		return math.NaN()
	}
	return (at * (1 - in.Downwash) * in.TailArea * in.TailArm) / (in.WingArea * a)
}
