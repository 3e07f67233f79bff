package airframe

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Field names one editable parameter of a placement.
type Field string

const (
	FieldName       Field = "name"
	FieldOffset     Field = "offset"
	FieldMass       Field = "mass"
	FieldWidth      Field = "width"
	FieldXfoilData  Field = "xfoil_data"
	FieldAOI        Field = "aoi"
	FieldRootChord  Field = "root_chord"
	FieldTipChord   Field = "tip_chord"
	FieldCharLength Field = "characteristic_length"
	FieldThickness  Field = "thickness"
	FieldSemispan   Field = "semispan"
	FieldWettedArea Field = "wetted_area"
)

// Fields lists every known amendment field.
var Fields = []Field{
	FieldName, FieldOffset, FieldMass, FieldWidth, FieldXfoilData, FieldAOI,
	FieldRootChord, FieldTipChord, FieldCharLength, FieldThickness,
	FieldSemispan, FieldWettedArea,
}

// Fields each variant accepts besides name and offset. Anything else in an
// amendment is ignored for that variant.
var (
	wingFields = []Field{
		FieldMass, FieldXfoilData, FieldAOI, FieldRootChord, FieldTipChord,
		FieldCharLength, FieldThickness, FieldSemispan, FieldWettedArea,
	}
	equipmentFields = []Field{FieldMass, FieldWidth}
)

func acceptedFields(k Kind) []Field {
	if k == KindWing {
		return wingFields
	}
	return equipmentFields
}

func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Fields, f) {
		return "", fmt.Errorf("%w: unknown field %q", ErrFormValidation, s)
	}
	return f, nil
}

// Amendment is a form-like set of raw field values for one placement.
type Amendment map[Field]string

// amendPlan is a fully validated amendment ready to commit.
type amendPlan struct {
	name     string
	begin    float64
	end      float64
	numbers  map[Field]float64
	polarSrc *string
}

// Amend validates every field of a and then applies them all to the named
// placement. On any failure nothing changes and the returned error carries
// the offending field.
func (p *Plane) Amend(name string, a Amendment) error {
	pl, ok := p.layout.Get(name)
	if !ok {
		return p.reject("amend", name, fmt.Errorf("%w: %q", ErrUnknownComponent, name))
	}
	plan, err := p.validateAmendment(pl, a)
	if err != nil {
		return p.reject("amend", name, err)
	}
	p.commitAmendment(pl, plan)
	p.lg.Debug("amended component", "name", name, "new_name", plan.name,
		"begin", plan.begin, "end", plan.end)
	return nil
}

func (p *Plane) validateAmendment(pl *Placement, a Amendment) (*amendPlan, error) {
	kind := pl.Item.Kind()
	accepted := acceptedFields(kind)
	plan := &amendPlan{name: pl.Name, numbers: make(map[Field]float64)}

	for f := range a {
		if !slices.Contains(Fields, f) {
			return nil, formError(f, "unknown field")
		}
	}
	for _, f := range Fields {
		raw, ok := a[f]
		if !ok {
			continue
		}
		switch f {
		case FieldName:
			if err := p.validateRename(pl, raw); err != nil {
				return nil, err
			}
			plan.name = raw
		case FieldXfoilData:
			if kind == KindWing {
				src := strings.TrimSpace(raw)
				plan.polarSrc = &src
			}
		case FieldOffset:
			v, err := parseNumber(f, raw)
			if err != nil {
				return nil, err
			}
			if !(v >= 0 && v <= p.centerline) {
				return nil, formError(f, "component cannot extend beyond the centerline")
			}
			plan.numbers[f] = v
		default:
			v, err := parseNumber(f, raw)
			if err != nil {
				return nil, err
			}
			if err := checkShared(f, v); err != nil {
				return nil, err
			}
			if !slices.Contains(accepted, f) {
				continue
			}
			if kind == KindWing {
				if err := checkLifting(f, v); err != nil {
					return nil, err
				}
			}
			plan.numbers[f] = v
		}
	}

	if w, ok := pl.Item.(*Wing); ok {
		root := valueOr(plan.numbers, FieldRootChord, w.rootChord)
		tip := valueOr(plan.numbers, FieldTipChord, w.tipChord)
		if tip > root {
			f := FieldTipChord
			if _, ok := plan.numbers[f]; !ok {
				f = FieldRootChord
			}
			return nil, formError(f, "tip chord cannot be longer than root chord")
		}
	}

	footprint := pl.Length()
	switch it := pl.Item.(type) {
	case *Wing:
		footprint = valueOr(plan.numbers, FieldRootChord, it.rootChord)
	case *Equipment:
		footprint = valueOr(plan.numbers, FieldWidth, it.length)
	}
	delta := valueOr(plan.numbers, FieldOffset, pl.Begin) - pl.Begin
	begin, end, err := p.shifted(pl.Begin, pl.Begin+footprint, delta)
	if err != nil {
		f := FieldOffset
		if _, moved := plan.numbers[f]; !moved {
			f = FieldWidth
			if kind == KindWing {
				f = FieldRootChord
			}
		}
		return nil, formError(f, "component cannot extend beyond the centerline")
	}
	plan.begin, plan.end = begin, end
	return plan, nil
}

func (p *Plane) validateRename(pl *Placement, name string) error {
	switch {
	case name == pl.Name:
		return nil
	case name == "":
		return formError(FieldName, "name cannot be empty")
	case IsReserved(pl.Name) && !IsReserved(name):
		return reservedError(FieldName, "%q and %q are reserved component names", WingsSlot, TailSlot)
	case pl.Item.Kind() != KindWing && IsReserved(name):
		return reservedError(FieldName, "%q is reserved for lifting surfaces", name)
	}
	if _, taken := p.layout.Get(name); taken {
		return &FieldError{Field: FieldName, Reason: fmt.Sprintf("%q is already placed", name), Wrapped: ErrNameConflict}
	}
	return nil
}

func (p *Plane) commitAmendment(pl *Placement, plan *amendPlan) {
	oldMass := pl.Mass()
	switch it := pl.Item.(type) {
	case *Wing:
		for f, v := range plan.numbers {
			switch f {
			case FieldMass:
				it.mass = v
			case FieldAOI:
				it.aoi = v
			case FieldRootChord:
				it.rootChord = v
			case FieldTipChord:
				it.tipChord = v
			case FieldCharLength:
				it.charLength = v
			case FieldThickness:
				it.thickness = v
			case FieldSemispan:
				it.semispan = v
			case FieldWettedArea:
				it.wettedArea = v
				it.autoWettedArea = false
			}
		}
		it.thicknessRatio = it.thickness / it.rootChord
		it.deriveAreas()
		if plan.polarSrc != nil {
			it.SetPolarSource(*plan.polarSrc)
		}
	case *Equipment:
		if v, ok := plan.numbers[FieldMass]; ok {
			it.mass = v
		}
		if v, ok := plan.numbers[FieldWidth]; ok {
			it.length = v
		}
	}
	p.totalMass += pl.Mass() - oldMass
	pl.Begin, pl.End = plan.begin, plan.end
	if plan.name != pl.Name {
		p.layout.rename(pl.Name, plan.name)
	}
}

func parseNumber(f Field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &FieldError{Field: f, Reason: fmt.Sprintf("cannot understand %q", raw), Wrapped: ErrFormValidation}
	}
	return v, nil
}

func checkShared(f Field, v float64) error {
	if (f == FieldMass || f == FieldWidth) && !(v > 0) {
		return formError(f, "must be greater than zero")
	}
	return nil
}

func checkLifting(f Field, v float64) error {
	switch f {
	case FieldCharLength, FieldThickness, FieldWettedArea, FieldSemispan, FieldRootChord, FieldTipChord:
		if !(v > 0) {
			return formError(f, "must have a value greater than zero")
		}
	}
	return nil
}

func valueOr(m map[Field]float64, f Field, def float64) float64 {
	if v, ok := m[f]; ok {
		return v
	}
	return def
}
