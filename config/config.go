// Package config loads the simulation setup from YAML.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt              = 1.0 / 60.0
	DefaultDuration        = 10.0
	DefaultSubsteps        = 1
	DefaultWorkers         = 1
	DefaultStiffness       = 30.0
	DefaultPerturbInterval = 3.0
	DefaultHalfExtent      = 0.5
	DefaultDensity         = 1.0
)

const (
	ShapeBox    = "box"
	ShapeSphere = "sphere"
)

var ErrInvalid = errors.New("config: invalid configuration")

// Vec3 is a 3-vector written as a YAML sequence.
type Vec3 [3]float64

func (v Vec3) Mgl() mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], v[2]}
}

// Quat is a quaternion written as a YAML mapping of w, x, y, z.
type Quat struct {
	W float64 `yaml:"w"`
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// UnmarshalYAML replaces the whole quaternion, so omitted components read as zero
// instead of keeping their default value.
func (q *Quat) UnmarshalYAML(value *yaml.Node) error {
	type plain Quat
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*q = Quat(p)
	return nil
}

func (q Quat) IsZero() bool {
	return q == Quat{}
}

// Mgl returns q normalized. The zero quaternion maps to the identity.
func (q Quat) Mgl() mgl64.Quat {
	if q.IsZero() {
		return mgl64.QuatIdent()
	}
	return mgl64.Quat{W: q.W, V: mgl64.Vec3{q.X, q.Y, q.Z}}.Normalize()
}

type Config struct {
	Dt           float64            `yaml:"dt"`
	Duration     float64            `yaml:"duration"`
	Substeps     int                `yaml:"substeps"`
	Workers      int                `yaml:"workers"`
	Gravity      Vec3               `yaml:"gravity"`
	Controller   ControllerConfig   `yaml:"controller"`
	Perturbation PerturbationConfig `yaml:"perturbation"`
	Bodies       []BodyConfig       `yaml:"bodies"`
}

type ControllerConfig struct {
	Stiffness float64 `yaml:"stiffness"`
	// Target is normalized before use; it must not be zero.
	Target Quat `yaml:"target"`
}

type PerturbationConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Acceleration Vec3    `yaml:"acceleration"`
	Interval     float64 `yaml:"interval"`
}

type BodyConfig struct {
	Shape           string  `yaml:"shape"`
	HalfExtents     Vec3    `yaml:"half_extents,omitempty"`
	Radius          float64 `yaml:"radius,omitempty"`
	Density         float64 `yaml:"density"`
	Static          bool    `yaml:"static,omitempty"`
	Position        Vec3    `yaml:"position"`
	Orientation     Quat    `yaml:"orientation"`
	AngularVelocity Vec3    `yaml:"angular_velocity"`
	LinearDamping   float64 `yaml:"linear_damping,omitempty"`
	AngularDamping  float64 `yaml:"angular_damping,omitempty"`
}

// DefaultBody is a dynamic unit cube at rest.
func DefaultBody() BodyConfig {
	return BodyConfig{
		Shape:       ShapeBox,
		HalfExtents: Vec3{DefaultHalfExtent, DefaultHalfExtent, DefaultHalfExtent},
		Density:     DefaultDensity,
		Orientation: Quat{W: 1},
	}
}

// Default is the demo scene: one cube in zero gravity, driven towards normalize(1, 2, 3, 4)
// and kicked about X after the first perturbation interval.
func Default() *Config {
	return &Config{
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Substeps: DefaultSubsteps,
		Workers:  DefaultWorkers,
		Controller: ControllerConfig{
			Stiffness: DefaultStiffness,
			Target:    Quat{W: 4, X: 1, Y: 2, Z: 3},
		},
		Perturbation: PerturbationConfig{
			Enabled:      true,
			Acceleration: Vec3{10, 0, 0},
			Interval:     DefaultPerturbInterval,
		},
		Bodies: []BodyConfig{DefaultBody()},
	}
}

// Load reads path over Default() and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over Default() and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
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

// TargetOrientation returns the normalized controller target.
func (c *Config) TargetOrientation() mgl64.Quat {
	return c.Controller.Target.Mgl()
}

// Validate reports every problem found, each wrapping ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if !positive(c.Dt) {
		invalid("dt must be positive, got %g", c.Dt)
	}
	if !positive(c.Duration) {
		invalid("duration must be positive, got %g", c.Duration)
	}
	if c.Substeps < 0 {
		invalid("substeps must not be negative, got %d", c.Substeps)
	}
	if c.Workers < 0 {
		invalid("workers must not be negative, got %d", c.Workers)
	}
	if !positive(c.Controller.Stiffness) {
		invalid("controller.stiffness must be positive, got %g", c.Controller.Stiffness)
	}
	if c.Controller.Target.IsZero() {
		invalid("controller.target must not be the zero quaternion")
	}
	if c.Perturbation.Enabled && !positive(c.Perturbation.Interval) {
		invalid("perturbation.interval must be positive, got %g", c.Perturbation.Interval)
	}

	for i, b := range c.Bodies {
		switch b.Shape {
		case ShapeBox:
			for _, h := range b.HalfExtents {
				if !positive(h) {
					invalid("bodies[%d].half_extents must be positive, got %v", i, b.HalfExtents)
					break
				}
			}
		case ShapeSphere:
			if !positive(b.Radius) {
				invalid("bodies[%d].radius must be positive, got %g", i, b.Radius)
			}
		default:
			invalid("bodies[%d].shape %q is not %q or %q", i, b.Shape, ShapeBox, ShapeSphere)
		}
		if math.IsNaN(b.Density) || b.Density < 0 {
			invalid("bodies[%d].density must not be negative, got %g", i, b.Density)
		}
	}

	return errors.Join(errs...)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
