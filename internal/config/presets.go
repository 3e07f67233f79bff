package config

import (
	"slices"

	"github.com/san-kum/stabcalc/internal/airframe"
)

// Presets are named flight conditions.
var Presets = map[string]FlightConfig{
	"field":  fieldFlight(),
	"isa":    isaFlight(),
	"cruise": withMotion(fieldFlight(), 15, 1.5, 0),
	"launch": withMotion(fieldFlight(), 8, 4, 5),
}

func isaFlight() FlightConfig {
	f := airframe.NewFlight()
	f.SetISASeaLevel()
	return flightConfig(f)
}

func withMotion(f FlightConfig, airspeed, thrust, pitch float64) FlightConfig {
	f.Airspeed = airspeed
	f.Thrust = thrust
	f.Pitch = pitch
	return f
}

// GetPreset returns a default config using the named flight conditions,
// or nil.
func GetPreset(name string) *Config {
	f, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Flight = f
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
