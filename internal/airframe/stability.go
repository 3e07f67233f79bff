package airframe

import (
	"math"

	"github.com/san-kum/stabcalc/internal/aero"
)

// Verdict is the static-margin stability outcome.
type Verdict int

const (
	Undecided Verdict = iota
	Stable
	Unstable
)

func (v Verdict) String() string {
	switch v {
	case Stable:
		return "STABLE"
	case Unstable:
		return "UNSTABLE"
	default:
		return "UNDECIDED"
	}
}

// CG is the mass-weighted centre of gravity along the centerline. The
// fuselage mass is assumed to sit at mid-centerline.
func (p *Plane) CG() float64 {
	moment := p.fuselageMass * (p.centerline / 2)
	mass := p.fuselageMass
	for _, pl := range p.layout.All() {
		moment += pl.Mid() * pl.Mass()
		mass += pl.Mass()
	}
	return moment / mass
}

// NeutralPoint is the geometric neutral point from the tail-volume
// coefficient. It needs both lifting-surface slots.
func (p *Plane) NeutralPoint() (float64, bool) {
	wp, wing, ok := p.Wings()
	if !ok {
		return 0, false
	}
	tp, tail, ok := p.Tail()
	if !ok {
		return 0, false
	}
	arm := (tp.Begin + tail.AC()) - (wp.Begin + wing.AC())
	volume := (tail.Area() * arm) / (wing.Area() * wing.MAC())
	npMAC := 0.25 + 0.8*volume*(tail.AspectRatio()/wing.AspectRatio())*0.6
	return wp.Begin + wing.MAC()*npMAC, true
}

// NeutralPointPolar estimates the neutral point from the lift slopes of the
// loaded polars. It needs both slots, polar data on both surfaces and an
// airspeed that yields a Reynolds number.
func (p *Plane) NeutralPointPolar() (float64, bool) {
	wp, wing, ok := p.Wings()
	if !ok {
		return 0, false
	}
	tp, tail, ok := p.Tail()
	if !ok {
		return 0, false
	}
	if !wing.HasPolars() || !tail.HasPolars() {
		p.lg.Debug("neutral point from polars unavailable", "reason", "no polar data")
		return 0, false
	}
	reWing, okW := wing.Reynolds()
	reTail, okT := tail.Reynolds()
	if !okW || !okT {
		p.lg.Debug("neutral point from polars unavailable", "reason", "no flight conditions")
		return 0, false
	}
	npm := aero.NeutralPointFromPolars(aero.NeutralPointInput{
		WingPolar: wing.polars.Cl,
		TailPolar: tail.polars.Cl,
		ReWing:    reWing,
		ReTail:    reTail,
		AOAWing:   wing.AOA(),
		AOATail:   tail.AOA(),
		TailArm:   (tp.Begin + tail.AC()) - (wp.Begin + wing.AC()),
		WingArea:  wing.Area(),
		TailArea:  tail.Area(),
		Downwash:  Downwash,
	})
	if math.IsNaN(npm) || math.IsInf(npm, 0) {
		return 0, false
	}
	return wp.Begin + wing.AC() + npm, true
}

// StaticMargin is NP - CG in metres.
func (p *Plane) StaticMargin() (float64, bool) {
	np, ok := p.NeutralPoint()
	if !ok {
		return 0, false
	}
	return np - p.CG(), true
}

// Verdict compares the CG with the geometric neutral point.
func (p *Plane) Verdict() Verdict {
	np, ok := p.NeutralPoint()
	if !ok {
		return Undecided
	}
	if p.CG() <= np {
		return Stable
	}
	return Unstable
}

// WingCP is the main wing's centre of pressure on the centerline.
func (p *Plane) WingCP() (float64, bool) { return surfaceCP(p.Wings()) }

// TailCP is the horizontal tail's centre of pressure on the centerline.
func (p *Plane) TailCP() (float64, bool) { return surfaceCP(p.Tail()) }

func surfaceCP(pl *Placement, w *Wing, ok bool) (float64, bool) {
	if !ok {
		return 0, false
	}
	return pl.Begin + w.Xcp(), true
}

// WingMoment is the wing lift times its arm from the CG. Positive arms lie
// aft of the CG.
func (p *Plane) WingMoment() float64 { return p.liftMoment(p.Wings()) }

func (p *Plane) TailMoment() float64 { return p.liftMoment(p.Tail()) }

func (p *Plane) liftMoment(pl *Placement, w *Wing, ok bool) float64 {
	if !ok {
		return 0
	}
	return w.Lift() * (pl.Begin + w.Xcp() - p.CG())
}

// GustMoment is the gust force times (CG - gust offset); zero without a
// gust.
func (p *Plane) GustMoment() float64 {
	if p.gust == nil {
		return 0
	}
	return p.gust.Force * (p.CG() - p.gust.Offset)
}

// TotalMoment is the net pitching moment, nose-up positive. Lift aft of the
// CG pitches the nose down.
func (p *Plane) TotalMoment() float64 {
	return p.GustMoment() - p.WingMoment() - p.TailMoment()
}

// Inertia approximates the pitch moment of inertia as the total mass at
// each force's squared arm from the CG.
func (p *Plane) Inertia() float64 {
	cg := p.CG()
	var arms float64
	if x, ok := p.WingCP(); ok {
		arms += aero.Sqr(x - cg)
	}
	if x, ok := p.TailCP(); ok {
		arms += aero.Sqr(x - cg)
	}
	if p.gust != nil {
		arms += aero.Sqr(cg - p.gust.Offset)
	}
	return arms * p.totalMass
}

// AngularAcceleration is the pitch acceleration in deg/s². It is zero when
// no force has an arm.
func (p *Plane) AngularAcceleration() float64 {
	inertia := p.Inertia()
	if inertia == 0 {
		return 0
	}
	return InertiaScale * (p.TotalMoment() / inertia)
}

// Drag sums the drag of every aerodynamic placement.
func (p *Plane) Drag() float64 {
	var d float64
	for _, pl := range p.layout.All() {
		if c, ok := pl.Item.(Component); ok {
			d += c.Drag()
		}
	}
	return d
}

// Lift sums the lift of the lifting surfaces.
func (p *Plane) Lift() float64 {
	var l float64
	for _, pl := range p.layout.All() {
		if c, ok := pl.Item.(Component); ok {
			l += c.Lift()
		}
	}
	return l
}

// Tick advances the flight by one explicit Euler step of TickInterval:
// airspeed from net thrust, then angular velocity, then pitch. Airspeed
// never goes negative.
func (p *Plane) Tick() {
	net := p.flight.Thrust - p.Drag()
	p.flight.Airspeed = math.Max(0, p.flight.Airspeed+(net/p.totalMass)*TickInterval)
	p.angularVelocity += p.AngularAcceleration() * TickInterval
	p.flight.Pitch += p.angularVelocity * TickInterval
}

// ResetMotion zeroes airspeed, pitch and angular velocity.
func (p *Plane) ResetMotion() {
	p.flight.Airspeed = 0
	p.flight.Pitch = 0
	p.angularVelocity = 0
}
