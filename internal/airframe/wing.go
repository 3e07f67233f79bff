package airframe

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/san-kum/stabcalc/internal/aero"
	"github.com/san-kum/stabcalc/internal/polar"
)

const (
	DefaultAOI    = 3.0
	DefaultOswald = 0.85
	// NoPolarCl is the lift coefficient used when no polar data is loaded.
	NoPolarCl = 1.0
	// MinLiftAirspeed is the airspeed below which a wing produces no lift.
	MinLiftAirspeed = 1.0
)

// WingParams are the construction parameters of a lifting surface. Zero
// values select the documented defaults.
type WingParams struct {
	Name                 string
	Mass                 float64
	CharacteristicLength float64
	RefArea              float64 // 0: planform area
	WettedArea           float64 // 0: twice the planform area
	CrudFactor           float64 // 0: DefaultCrudFactor
	Sweep                float64 // deg
	RootChord            float64
	TipChord             float64 // 0: RootChord
	Semispan             float64 // one side
	Thickness            float64 // 0: ThicknessRatio·RootChord
	ThicknessRatio       float64 // 0: Thickness/RootChord
	AOI                  *float64
	Oswald               float64 // 0: DefaultOswald
	AspectRatio          float64 // 0: span²/area
	PolarSource          string
}

var _ Component = (*Wing)(nil)

// Wing is a lifting surface with a straight-tapered planform.
type Wing struct {
	Body
	sweep          float64
	rootChord      float64
	tipChord       float64
	semispan       float64
	thickness      float64
	thicknessRatio float64
	aoi            float64
	oswald         float64
	fixedAR        float64
	// autoRefArea and autoWettedArea mark areas derived from the planform;
	// they follow geometry amendments.
	autoRefArea    bool
	autoWettedArea bool
	polarSource    string
	polars         *polar.Set
}

func NewWing(p WingParams, f *Flight) (*Wing, error) {
	switch {
	case p.Name == "":
		return nil, paramError("name must be given")
	case !positive(p.Mass):
		return nil, paramError("%s: mass must be greater than zero", p.Name)
	case !positive(p.CharacteristicLength):
		return nil, paramError("%s: characteristic length must be greater than zero", p.Name)
	case !positive(p.RootChord):
		return nil, paramError("%s: root chord must be greater than zero", p.Name)
	case !positive(p.Semispan):
		return nil, paramError("%s: semispan must be greater than zero", p.Name)
	case !(p.TipChord >= 0 && p.TipChord <= p.RootChord):
		return nil, paramError("%s: tip chord cannot be longer than root chord", p.Name)
	case !nonNegative(p.Thickness) || !nonNegative(p.ThicknessRatio):
		return nil, paramError("%s: thickness and thickness ratio cannot be negative", p.Name)
	case p.Thickness == 0 && p.ThicknessRatio == 0:
		return nil, paramError("%s: thickness or thickness ratio must be given", p.Name)
	case !nonNegative(p.RefArea) || !nonNegative(p.WettedArea):
		return nil, paramError("%s: areas cannot be negative", p.Name)
	case !nonNegative(p.CrudFactor) || !nonNegative(p.Oswald) || !nonNegative(p.AspectRatio):
		return nil, paramError("%s: crud factor, Oswald factor and aspect ratio cannot be negative", p.Name)
	case !finite(p.Sweep) || (p.AOI != nil && !finite(*p.AOI)):
		return nil, paramError("%s: sweep and incidence must be finite", p.Name)
	}

	w := &Wing{
		Body: Body{
			name:       p.Name,
			mass:       p.Mass,
			charLength: p.CharacteristicLength,
			refArea:    p.RefArea,
			wettedArea: p.WettedArea,
			crudFactor: p.CrudFactor,
			flight:     f,
		},
		sweep:       p.Sweep,
		rootChord:   p.RootChord,
		tipChord:    p.TipChord,
		semispan:    p.Semispan,
		thickness:   p.Thickness,
		aoi:         DefaultAOI,
		oswald:      p.Oswald,
		fixedAR:     p.AspectRatio,
		polarSource: p.PolarSource,
	}
	if w.tipChord == 0 {
		w.tipChord = w.rootChord
	}
	if w.thickness == 0 {
		w.thickness = p.ThicknessRatio * w.rootChord
	}
	w.thicknessRatio = p.ThicknessRatio
	if w.thicknessRatio == 0 {
		w.thicknessRatio = w.thickness / w.rootChord
	}
	if p.AOI != nil {
		w.aoi = *p.AOI
	}
	if w.oswald == 0 {
		w.oswald = DefaultOswald
	}
	if w.crudFactor == 0 {
		w.crudFactor = DefaultCrudFactor
	}
	w.autoRefArea = w.refArea == 0
	w.autoWettedArea = w.wettedArea == 0
	w.deriveAreas()
	return w, nil
}

func (w *Wing) deriveAreas() {
	if w.autoRefArea {
		w.refArea = w.Area()
	}
	if w.autoWettedArea {
		w.wettedArea = 2 * w.Area()
	}
}

func (w *Wing) Kind() Kind          { return KindWing }
func (w *Wing) Footprint() float64  { return w.rootChord }
func (w *Wing) Sweep() float64      { return w.sweep }
func (w *Wing) RootChord() float64  { return w.rootChord }
func (w *Wing) TipChord() float64   { return w.tipChord }
func (w *Wing) Semispan() float64   { return w.semispan }
func (w *Wing) Thickness() float64  { return w.thickness }
func (w *Wing) AOI() float64        { return w.aoi }
func (w *Wing) Oswald() float64     { return w.oswald }
func (w *Wing) PolarSource() string { return w.polarSource }

func (w *Wing) ThicknessRatio() float64 { return w.thicknessRatio }

func (w *Wing) Span() float64 { return 2 * w.semispan }

func (w *Wing) Area() float64 {
	return ((w.rootChord + w.tipChord) / 2) * w.Span()
}

func (w *Wing) AspectRatio() float64 {
	if w.fixedAR > 0 {
		return w.fixedAR
	}
	return aero.Sqr(w.Span()) / w.Area()
}

// MAC is the mean aerodynamic chord of the tapered planform.
func (w *Wing) MAC() float64 {
	a, b := w.rootChord, w.tipChord
	return a - (2 * (a - b) * (0.5*a + b) / (3 * (a + b)))
}

// AC is the aerodynamic centre measured from the leading edge.
func (w *Wing) AC() float64 { return 0.25 * w.MAC() }

// Xcp is the centre of pressure from the leading edge, taken at the
// aerodynamic centre.
func (w *Wing) Xcp() float64 { return w.AC() }

// AOA is the flight pitch plus the angle of incidence.
func (w *Wing) AOA() float64 {
	if w.flight == nil {
		return w.aoi
	}
	return w.flight.Pitch + w.aoi
}

// FormFactor follows Hoerner: 1 + 2·t/c + 60·(t/c)^4.
func (w *Wing) FormFactor() float64 {
	tc := w.thicknessRatio
	return 1 + 2*tc + 60*math.Pow(tc, 4)
}

func (w *Wing) Cl() float64 {
	if w.flight == nil || w.flight.Airspeed < MinLiftAirspeed {
		return 0
	}
	if w.polars.Empty() {
		return NoPolarCl
	}
	re, ok := w.Reynolds()
	if !ok {
		return 0
	}
	return aero.Lerp2D(w.polars.Cl, re, w.AOA())
}

// Cm is the pitching-moment coefficient from the polar table. It is
// unavailable without polar data or a Reynolds number.
func (w *Wing) Cm() (float64, bool) {
	if w.polars.Empty() {
		return 0, false
	}
	re, ok := w.Reynolds()
	if !ok {
		return 0, false
	}
	return aero.Lerp2D(w.polars.Cm, re, w.AOA()), true
}

// Cdi uses the Oswald estimate Cl²/(pi·AR·e) even when a polar Cd table is
// loaded.
func (w *Wing) Cdi() float64 {
	if w.flight == nil || w.flight.Airspeed < MinLiftAirspeed {
		return 0
	}
	return aero.Sqr(w.Cl()) / (math.Pi * w.AspectRatio() * w.oswald)
}

// PolarCd is the profile drag coefficient read from the polar table.
func (w *Wing) PolarCd() (float64, bool) {
	if w.polars.Empty() {
		return 0, false
	}
	re, ok := w.Reynolds()
	if !ok {
		return 0, false
	}
	return aero.Lerp2D(w.polars.Cd, re, w.AOA()), true
}

func (w *Wing) Cdp() float64 { return w.cdp(w.FormFactor()) }

func (w *Wing) ParasiticDrag() float64 { return w.force(w.Cdp()) }
func (w *Wing) InducedDrag() float64   { return w.force(w.Cdi()) }
func (w *Wing) Drag() float64          { return w.ParasiticDrag() + w.InducedDrag() }

// Lift uses the planform area rather than the reference area.
func (w *Wing) Lift() float64 {
	return w.Cl() * w.flight.DynamicPressure() * w.Area()
}

// Coefficients summarizes the wing's current aerodynamic coefficients.
type Coefficients struct {
	Cl, Cdi, Cdp, Cd float64
}

func (w *Wing) Aero() Coefficients {
	c := Coefficients{Cl: w.Cl(), Cdi: w.Cdi(), Cdp: w.Cdp()}
	c.Cd = c.Cdi + c.Cdp
	return c
}

func (w *Wing) HasPolars() bool { return !w.polars.Empty() }

func (w *Wing) Polars() *polar.Set { return w.polars }

// SetPolars installs parsed polar data; nil reverts to the NoPolarCl
// approximation.
func (w *Wing) SetPolars(s *polar.Set) {
	if s.Empty() {
		w.polars = nil
		return
	}
	w.polars = s
}

// LoadPolars reads the wing's polar source through l, resolving a relative
// source against baseDir. A failed load leaves the wing without polar data.
func (w *Wing) LoadPolars(l *polar.Loader, baseDir string) error {
	if w.polarSource == "" {
		w.polars = nil
		return nil
	}
	src := w.polarSource
	if !filepath.IsAbs(src) && baseDir != "" {
		src = filepath.Join(baseDir, src)
	}
	s, err := l.Load(src)
	if err != nil {
		w.polars = nil
		return fmt.Errorf("%s: %w", w.name, err)
	}
	w.SetPolars(s)
	return nil
}

// SetPolarSource changes the polar source and drops any loaded data.
func (w *Wing) SetPolarSource(src string) {
	if src != w.polarSource {
		w.polars = nil
	}
	w.polarSource = src
}
