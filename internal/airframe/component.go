package airframe

import "math"

// Kind tags the closed set of things that can sit on the centerline.
type Kind int

const (
	KindWing Kind = iota
	KindEquipment
)

func (k Kind) String() string {
	switch k {
	case KindWing:
		return "wing"
	case KindEquipment:
		return "equipment"
	default:
		return "unknown"
	}
}

const (
	DefaultCrudFactor = 0.28
	// MinReynoldsAirspeed is the airspeed below which the Reynolds number is
	// not reported.
	MinReynoldsAirspeed = 0.8
	// MinFrictionReynolds is the Reynolds number below which skin friction is
	// treated as zero.
	MinFrictionReynolds = 100
)

// Placeable is anything the layout can hold.
type Placeable interface {
	Name() string
	Mass() float64
	// Footprint is the length the item occupies along the centerline.
	Footprint() float64
	Kind() Kind
}

// Component is a placeable item with drag and lift physics.
type Component interface {
	Placeable
	Reynolds() (float64, bool)
	Cf() float64
	FormFactor() float64
	Cdp() float64
	Cdi() float64
	Cl() float64
	ParasiticDrag() float64
	InducedDrag() float64
	Drag() float64
	Lift() float64
}

// Body carries the parasitic-drag physics shared by every aerodynamic
// component. Variants supply the form factor and override lift.
type Body struct {
	name       string
	mass       float64
	charLength float64
	refArea    float64
	wettedArea float64
	crudFactor float64
	flight     *Flight
}

func (b *Body) Name() string                  { return b.name }
func (b *Body) Mass() float64                 { return b.mass }
func (b *Body) CharacteristicLength() float64 { return b.charLength }
func (b *Body) RefArea() float64              { return b.refArea }
func (b *Body) WettedArea() float64           { return b.wettedArea }
func (b *Body) CrudFactor() float64           { return b.crudFactor }
func (b *Body) Flight() *Flight               { return b.flight }

func (b *Body) bindFlight(f *Flight) { b.flight = f }

// force converts a coefficient to newtons over the reference area.
func (b *Body) force(coefficient float64) float64 {
	return coefficient * b.flight.DynamicPressure() * b.refArea
}

// Reynolds returns V·L/nu, or false below MinReynoldsAirspeed.
func (b *Body) Reynolds() (float64, bool) {
	if b.flight == nil || b.flight.Airspeed < MinReynoldsAirspeed || b.flight.Viscosity <= 0 {
		return 0, false
	}
	return (b.flight.Airspeed * b.charLength) / b.flight.Viscosity, true
}

// Cf is the turbulent flat-plate skin-friction coefficient.
func (b *Body) Cf() float64 {
	re, ok := b.Reynolds()
	if !ok || re < MinFrictionReynolds {
		return 0
	}
	return 0.455 / math.Pow(math.Log10(re), 2.58)
}

func (b *Body) cdp(formFactor float64) float64 {
	if b.refArea == 0 {
		return 0
	}
	return (b.Cf() * formFactor * b.wettedArea) / b.refArea
}

// Cdi and Cl are zero for non-lifting bodies.
func (b *Body) Cdi() float64 { return 0 }
func (b *Body) Cl() float64  { return 0 }
