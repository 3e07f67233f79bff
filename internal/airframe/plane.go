// Package airframe models a fixed-wing aircraft as components placed along a
// single centerline and derives its longitudinal stability.
package airframe

import (
	"fmt"

	"github.com/brunoga/deep"

	"github.com/san-kum/stabcalc/internal/aero"
	"github.com/san-kum/stabcalc/internal/log"
)

const (
	// WingsSlot and TailSlot are the only names a lifting surface may use.
	WingsSlot = "wings"
	TailSlot  = "htail"

	// TickInterval is the integration step in seconds.
	TickInterval = 0.05
	// MoveStep is the fore/aft nudge as a fraction of the centerline.
	MoveStep = 0.025
	// InertiaScale converts moment over inertia to deg/s².
	InertiaScale = 0.175
	// Downwash is the fixed downwash fraction used by the polar neutral point.
	Downwash = 0.1
)

// IsReserved reports whether name is one of the lifting-surface slots.
func IsReserved(name string) bool {
	return name == WingsSlot || name == TailSlot
}

// Gust is a vertical wind-gust force applied at a centerline offset.
type Gust struct {
	Offset float64
	Force  float64
}

// Plane owns the centerline layout and the flight conditions its components
// share. A plane must be mutated by one goroutine at a time.
type Plane struct {
	projectName     string
	flight          *Flight
	centerline      float64
	fuselageMass    float64
	totalMass       float64
	layout          *Layout
	gust            *Gust
	angularVelocity float64
	lg              *log.Logger
}

func NewPlane(centerline, fuselageMass float64, f *Flight) (*Plane, error) {
	if !positive(centerline) {
		return nil, paramError("centerline length must be greater than zero, got %g", centerline)
	}
	if !positive(fuselageMass) {
		return nil, paramError("fuselage mass must be greater than zero, got %g", fuselageMass)
	}
	if f == nil {
		f = NewFlight()
	}
	return &Plane{
		flight:       f,
		centerline:   centerline,
		fuselageMass: fuselageMass,
		totalMass:    fuselageMass,
		layout:       newLayout(),
	}, nil
}

func (p *Plane) ProjectName() string      { return p.projectName }
func (p *Plane) Flight() *Flight          { return p.flight }
func (p *Plane) Centerline() float64      { return p.centerline }
func (p *Plane) FuselageMass() float64    { return p.fuselageMass }
func (p *Plane) TotalMass() float64       { return p.totalMass }
func (p *Plane) Layout() *Layout          { return p.layout }
func (p *Plane) AngularVelocity() float64 { return p.angularVelocity }

func (p *Plane) SetLogger(lg *log.Logger) { p.lg = lg }

func (p *Plane) SetProjectName(name string) error {
	if name == "" {
		return paramError("project name cannot be empty")
	}
	p.projectName = name
	return nil
}

// SetCenterline changes the centerline length. It cannot cut off a placed
// item.
func (p *Plane) SetCenterline(length float64) error {
	if !positive(length) {
		return paramError("centerline length must be greater than zero, got %g", length)
	}
	for _, pl := range p.layout.All() {
		if pl.End > length {
			return fmt.Errorf("%w: %s ends at %g, beyond a centerline of %g",
				ErrOutOfBounds, pl.Name, pl.End, length)
		}
	}
	p.centerline = length
	return nil
}

func (p *Plane) SetFuselageMass(m float64) error {
	if !positive(m) {
		return paramError("fuselage mass must be greater than zero, got %g", m)
	}
	p.totalMass += m - p.fuselageMass
	p.fuselageMass = m
	return nil
}

func (p *Plane) SetThrust(n float64) { p.flight.Thrust = n }

func (p *Plane) SetGust(offset, force float64) {
	p.gust = &Gust{Offset: offset, Force: force}
}

func (p *Plane) ClearGust() { p.gust = nil }

// Gust returns the current gust, or nil.
func (p *Plane) Gust() *Gust {
	if p.gust == nil {
		return nil
	}
	g := *p.gust
	return &g
}

// Wings returns the placement in the main-wing slot.
func (p *Plane) Wings() (*Placement, *Wing, bool) { return p.surface(WingsSlot) }

// Tail returns the placement in the horizontal-tail slot.
func (p *Plane) Tail() (*Placement, *Wing, bool) { return p.surface(TailSlot) }

func (p *Plane) surface(slot string) (*Placement, *Wing, bool) {
	pl, ok := p.layout.Get(slot)
	if !ok {
		return nil, nil, false
	}
	w, ok := pl.Wing()
	if !ok {
		return nil, nil, false
	}
	return pl, w, true
}

// AddComponent places a lifting surface with its leading edge at offset. The
// plane takes ownership of w and rebinds it to the plane's flight.
func (p *Plane) AddComponent(w *Wing, offset float64) error {
	if !IsReserved(w.Name()) {
		return p.reject("add", w.Name(), fmt.Errorf("%w: a lifting surface must be named %q or %q, got %q",
			ErrReservedSlot, WingsSlot, TailSlot, w.Name()))
	}
	if err := p.place(w, offset); err != nil {
		return err
	}
	w.bindFlight(p.flight)
	return nil
}

// AddEquipment places a non-aerodynamic item starting at offset.
func (p *Plane) AddEquipment(e *Equipment, offset float64) error {
	if IsReserved(e.Name()) {
		return p.reject("add", e.Name(), fmt.Errorf("%w: %q is reserved for lifting surfaces",
			ErrReservedSlot, e.Name()))
	}
	return p.place(e, offset)
}

func (p *Plane) place(item Placeable, offset float64) error {
	name := item.Name()
	if _, ok := p.layout.Get(name); ok {
		return p.reject("add", name, fmt.Errorf("%w: %q is already placed", ErrNameConflict, name))
	}
	end := offset + item.Footprint()
	if !(offset >= 0) {
		return p.reject("add", name, fmt.Errorf("%w: offset %g is negative", ErrOutOfBounds, offset))
	}
	if !(end <= p.centerline) {
		return p.reject("add", name, fmt.Errorf("%w: end at %g falls beyond the centerline of length %g",
			ErrOutOfBounds, end, p.centerline))
	}

	p.layout.put(&Placement{Name: name, Begin: offset, End: end, Item: item})
	p.totalMass += item.Mass()
	p.lg.Debug("placed component", "name", name, "kind", item.Kind(), "begin", offset, "end", end)
	return nil
}

// RemoveComponent detaches a placement and subtracts its mass.
func (p *Plane) RemoveComponent(name string) error {
	pl, ok := p.layout.Get(name)
	if !ok {
		return p.reject("remove", name, fmt.Errorf("%w: %q", ErrUnknownComponent, name))
	}
	p.totalMass -= pl.Mass()
	p.layout.remove(name)
	p.lg.Debug("removed component", "name", name)
	return nil
}

// MoveComponent shifts a placement by distance metres, rounding both ends
// to four decimals. The placement is unchanged on failure.
func (p *Plane) MoveComponent(name string, distance float64) error {
	pl, ok := p.layout.Get(name)
	if !ok {
		return p.reject("move", name, fmt.Errorf("%w: %q", ErrUnknownComponent, name))
	}
	begin, end, err := p.shifted(pl.Begin, pl.End, distance)
	if err != nil {
		return p.reject("move", name, err)
	}
	pl.Begin, pl.End = begin, end
	p.lg.Debug("moved component", "name", name, "begin", begin, "end", end)
	return nil
}

// MoveFore moves a placement toward the nose by MoveStep of the centerline.
func (p *Plane) MoveFore(name string) error {
	return p.MoveComponent(name, -MoveStep*p.centerline)
}

// MoveAft moves a placement toward the tail by MoveStep of the centerline.
func (p *Plane) MoveAft(name string) error {
	return p.MoveComponent(name, MoveStep*p.centerline)
}

func (p *Plane) shifted(begin, end, distance float64) (float64, float64, error) {
	begin = aero.Round(begin+distance, 4)
	end = aero.Round(end+distance, 4)
	if !(begin >= 0) {
		return 0, 0, fmt.Errorf("%w: offset cannot be less than zero", ErrOutOfBounds)
	}
	if !(end <= p.centerline) {
		return 0, 0, fmt.Errorf("%w: component cannot extend beyond the centerline", ErrOutOfBounds)
	}
	return begin, end, nil
}

func (p *Plane) reject(op, name string, err error) error {
	p.lg.Info("rejected layout change", "op", op, "name", name, "error", err)
	return err
}

// Clone returns an independent copy of the plane with its own flight
// conditions, layout and components.
func (p *Plane) Clone() *Plane {
	f := *p.flight
	c := *p
	c.flight = &f
	c.gust = p.Gust()
	c.layout = newLayout()
	for _, pl := range p.layout.All() {
		cp := *pl
		switch it := pl.Item.(type) {
		case *Wing:
			w := *it
			if it.polars != nil {
				w.polars = deep.MustCopy(it.polars)
			}
			w.bindFlight(&f)
			cp.Item = &w
		case *Equipment:
			e := *it
			cp.Item = &e
		}
		c.layout.put(&cp)
	}
	return &c
}
