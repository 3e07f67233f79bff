package airframe

// Equipment is a placed mass with no aerodynamic behaviour: batteries,
// receivers, servos, ballast.
type Equipment struct {
	name   string
	typ    string
	length float64
	mass   float64
}

func NewEquipment(name, typ string, length, mass float64) (*Equipment, error) {
	switch {
	case name == "":
		return nil, paramError("name must be given")
	case !positive(length):
		return nil, paramError("%s: length must be greater than zero", name)
	case !positive(mass):
		return nil, paramError("%s: mass must be greater than zero", name)
	}
	return &Equipment{name: name, typ: typ, length: length, mass: mass}, nil
}

func (e *Equipment) Name() string       { return e.name }
func (e *Equipment) Type() string       { return e.typ }
func (e *Equipment) Length() float64    { return e.length }
func (e *Equipment) Mass() float64      { return e.mass }
func (e *Equipment) Footprint() float64 { return e.length }
func (e *Equipment) Kind() Kind         { return KindEquipment }
