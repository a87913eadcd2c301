// Package config loads and validates simulation configurations.
package config

import (
	"fmt"
	"os"

	"github.com/wroge/wgs84"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/flightdyn/internal/fdm"
	"github.com/san-kum/flightdyn/internal/frames"
)

const (
	DefaultDt       = 1.0 / 120
	DefaultDuration = 30.0
	DefaultMass     = 1100.0
	DefaultFriction = 0.8

	epsgGeodetic   = 4326 // WGS84 lat/lon
	epsgGeocentric = 4978 // WGS84 ECEF
)

type Config struct {
	Vehicle    VehicleConfig `yaml:"vehicle"`
	Gears      []GearConfig  `yaml:"gears"`
	Initial    InitialConfig `yaml:"initial"`
	Dt         float64       `yaml:"dt"`
	Duration   float64       `yaml:"duration"`
	Gravity    string        `yaml:"gravity"`
	Integrator string        `yaml:"integrator"`
	Rates      RateConfig    `yaml:"rates"`
}

// VehicleConfig holds the mass properties. The inertia tensor uses the
// aircraft convention of principal moments plus the xz cross product.
type VehicleConfig struct {
	Mass float64 `yaml:"mass"`
	Ixx  float64 `yaml:"ixx"`
	Iyy  float64 `yaml:"iyy"`
	Izz  float64 `yaml:"izz"`
	Ixz  float64 `yaml:"ixz"`
}

type GearConfig struct {
	Name     string  `yaml:"name"`
	X        float64 `yaml:"x"` // body frame, m
	Y        float64 `yaml:"y"`
	Z        float64 `yaml:"z"`
	Friction float64 `yaml:"friction"`
}

// InitialConfig places the vehicle at a geodetic position with a local-level
// attitude and descent rate.
type InitialConfig struct {
	Latitude    float64 `yaml:"latitude"`  // deg
	Longitude   float64 `yaml:"longitude"` // deg
	Altitude    float64 `yaml:"altitude"`  // m above the terrain sphere
	Roll        float64 `yaml:"roll"`      // rad, relative to local level
	Pitch       float64 `yaml:"pitch"`
	Yaw         float64 `yaml:"yaw"`
	DescentRate float64 `yaml:"descent_rate"` // m/s, positive down
}

// RateConfig sets per-model execution divisors relative to the base tick.
type RateConfig struct {
	Propagate     int `yaml:"propagate"`
	Contact       int `yaml:"contact"`
	Accelerations int `yaml:"accelerations"`
}

func DefaultConfig() *Config {
	return &Config{
		Vehicle: VehicleConfig{
			Mass: DefaultMass,
			Ixx:  1285, Iyy: 1825, Izz: 2667, Ixz: 0,
		},
		Gears: []GearConfig{
			{Name: "nose", X: 1.2, Z: 1.1, Friction: DefaultFriction},
			{Name: "left-main", X: -0.4, Y: -1.1, Z: 1.2, Friction: DefaultFriction},
			{Name: "right-main", X: -0.4, Y: 1.1, Z: 1.2, Friction: DefaultFriction},
		},
		Initial: InitialConfig{
			Altitude:    3.0,
			DescentRate: 1.5,
		},
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Gravity:    "wgs84",
		Integrator: "trapezoidal",
		Rates:      RateConfig{Propagate: 1, Contact: 1, Accelerations: 1},
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
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks up front the preconditions the runtime models do not
// defend against.
func (c *Config) Validate() error {
	if c.Vehicle.Mass <= 0 {
		return fdm.ErrBadMass
	}
	if c.Dt <= 0 {
		return fdm.ErrBadTimestep
	}
	for _, d := range []int{c.Rates.Propagate, c.Rates.Contact, c.Rates.Accelerations} {
		if d < 1 {
			return fdm.ErrBadRateDivisor
		}
	}
	if _, _, err := c.InertiaTensors(); err != nil {
		return err
	}
	return nil
}

// InertiaTensors returns the inertia tensor and its inverse. The inverse is
// computed once here; the runtime models assume it stays valid.
func (c *Config) InertiaTensors() (j, jinv frames.Mat3, err error) {
	v := c.Vehicle
	j = frames.Mat3{
		{v.Ixx, 0, -v.Ixz},
		{0, v.Iyy, 0},
		{-v.Ixz, 0, v.Izz},
	}

	dense := mat.NewDense(3, 3, []float64{
		j[0][0], j[0][1], j[0][2],
		j[1][0], j[1][1], j[1][2],
		j[2][0], j[2][1], j[2][2],
	})
	var inv mat.Dense
	if err := inv.Inverse(dense); err != nil {
		return j, jinv, fmt.Errorf("%w: %v", fdm.ErrSingularInertia, err)
	}
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			jinv[i][k] = inv.At(i, k)
		}
	}
	return j, jinv, nil
}

// ECEFPosition converts the initial geodetic position to ECEF coordinates.
func (c *Config) ECEFPosition() frames.Vec3 {
	transform := wgs84.EPSG().Transform(epsgGeodetic, epsgGeocentric)
	x, y, z := transform(c.Initial.Longitude, c.Initial.Latitude, c.Initial.Altitude)
	return frames.Vec3{x, y, z}
}
