package airframe

// Flight holds the ambient and flight-condition scalars shared by every
// component of one plane. Only the plane (or its owner) mutates it.
type Flight struct {
	Airspeed    float64 // true airspeed, m/s
	Rho         float64 // air density, kg/m3
	Pressure    float64 // Pa
	Temperature float64 // K
	Altitude    float64 // m above sea level
	Viscosity   float64 // kinematic viscosity, m2/s
	Thrust      float64 // N
	Pitch       float64 // deg, relative to the centerline
}

// NewFlight returns conditions for a 700 m field at 10 degC with the plane
// at rest.
func NewFlight() *Flight {
	return &Flight{
		Airspeed:    0.0,
		Rho:         1.144,
		Pressure:    983.81 * 100,
		Temperature: 283.593,
		Altitude:    701.4,
		Viscosity:   0.000014207,
	}
}

// SetISASeaLevel switches the atmosphere to ISA sea-level values.
func (f *Flight) SetISASeaLevel() {
	f.Rho = 1.225
	f.Pressure = 1013.25 * 100
	f.Temperature = 288.15
	f.Altitude = 0.0
}

// DynamicPressure returns q = 0.5·rho·V².
func (f *Flight) DynamicPressure() float64 {
	if f == nil {
		return 0
	}
	return 0.5 * f.Rho * f.Airspeed * f.Airspeed
}
