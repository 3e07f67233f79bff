package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/stabcalc/internal/airframe"
)

const (
	DefaultDuration  = 10.0
	DefaultCacheSize = 64
	DefaultDataDir   = ".stabcalc"
	DefaultLogLevel  = "info"
)

type Config struct {
	Flight  FlightConfig `yaml:"flight"`
	Sim     SimConfig    `yaml:"sim"`
	Log     LogConfig    `yaml:"log"`
	Polars  PolarConfig  `yaml:"polars"`
	DataDir string       `yaml:"data_dir"`
}

type FlightConfig struct {
	Airspeed    float64 `yaml:"airspeed"`
	Rho         float64 `yaml:"rho"`
	Pressure    float64 `yaml:"pressure"`
	Temperature float64 `yaml:"temperature"`
	Altitude    float64 `yaml:"altitude"`
	Viscosity   float64 `yaml:"viscosity"`
	Thrust      float64 `yaml:"thrust"`
	Pitch       float64 `yaml:"pitch"`
}

type SimConfig struct {
	Duration float64 `yaml:"duration"`
	// GustOffset and GustForce apply a gust for the whole run when
	// GustForce is non-zero.
	GustOffset float64 `yaml:"gust_offset"`
	GustForce  float64 `yaml:"gust_force"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

type PolarConfig struct {
	CacheSize int `yaml:"cache_size"`
}

// fieldFlight mirrors airframe.NewFlight so the yaml defaults and the core
// agree.
func fieldFlight() FlightConfig { return flightConfig(airframe.NewFlight()) }

func flightConfig(f *airframe.Flight) FlightConfig {
	return FlightConfig{
		Airspeed:    f.Airspeed,
		Rho:         f.Rho,
		Pressure:    f.Pressure,
		Temperature: f.Temperature,
		Altitude:    f.Altitude,
		Viscosity:   f.Viscosity,
		Thrust:      f.Thrust,
		Pitch:       f.Pitch,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Flight:  fieldFlight(),
		Sim:     SimConfig{Duration: DefaultDuration},
		Log:     LogConfig{Level: DefaultLogLevel},
		Polars:  PolarConfig{CacheSize: DefaultCacheSize},
		DataDir: DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Flight.Rho <= 0 {
		return fmt.Errorf("rho must be positive, got %f", c.Flight.Rho)
	}
	if c.Flight.Viscosity <= 0 {
		return fmt.Errorf("viscosity must be positive, got %f", c.Flight.Viscosity)
	}
	if c.Flight.Airspeed < 0 {
		return fmt.Errorf("airspeed cannot be negative, got %f", c.Flight.Airspeed)
	}
	if c.Sim.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Sim.Duration)
	}
	return nil
}

// NewFlight builds the flight conditions described by the config.
func (c *Config) NewFlight() *airframe.Flight {
	return &airframe.Flight{
		Airspeed:    c.Flight.Airspeed,
		Rho:         c.Flight.Rho,
		Pressure:    c.Flight.Pressure,
		Temperature: c.Flight.Temperature,
		Altitude:    c.Flight.Altitude,
		Viscosity:   c.Flight.Viscosity,
		Thrust:      c.Flight.Thrust,
		Pitch:       c.Flight.Pitch,
	}
}

// Steps is the number of integration steps in the configured duration.
func (c *Config) Steps() int {
	return int(c.Sim.Duration/airframe.TickInterval + 0.5)
}
