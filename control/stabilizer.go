package control

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

const (
	// DefaultStiffness is the proportional gain (1/s²) of the orientation loop.
	DefaultStiffness = 30.0

	// unitTolerance bounds | |q| - 1 | for a target orientation.
	unitTolerance = 1e-9
)

// Config holds the process-wide values a Stabilizer is built from.
type Config struct {
	// Target is the orientation every tracked body is driven to. Must be a unit quaternion.
	Target mgl64.Quat
	// Stiffness is the proportional gain; the damping gain is derived from it.
	Stiffness float64
	Logger    zerolog.Logger
}

// DefaultConfig targets the identity orientation with DefaultStiffness.
func DefaultConfig() Config {
	return Config{
		Target:    mgl64.QuatIdent(),
		Stiffness: DefaultStiffness,
		Logger:    zerolog.Nop(),
	}
}

// Stabilizer computes, every tick, a critically damped corrective torque per body:
//
//	a = e*kp - w*kd,  kd = 2*sqrt(kp),  torque = I*a
//
// where e is the rotation vector from the body orientation to the target.
// It keeps no state between ticks.
type Stabilizer struct {
	target    mgl64.Quat
	stiffness float64
	damping   float64
	logger    zerolog.Logger
}

// NewStabilizer validates cfg and returns a Stabilizer for it.
func NewStabilizer(cfg Config) (*Stabilizer, error) {
	if !IsUnit(cfg.Target, unitTolerance) {
		return nil, fmt.Errorf("%w: |q| = %g", ErrNotUnitQuaternion, cfg.Target.Len())
	}
	if math.IsNaN(cfg.Stiffness) || math.IsInf(cfg.Stiffness, 0) || cfg.Stiffness <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidStiffness, cfg.Stiffness)
	}

	return &Stabilizer{
		target:    cfg.Target,
		stiffness: cfg.Stiffness,
		damping:   CriticalDamping(cfg.Stiffness),
		logger:    cfg.Logger.With().Str("component", "stabilizer").Logger(),
	}, nil
}

// CriticalDamping returns the damping gain giving a critically damped response for stiffness.
func CriticalDamping(stiffness float64) float64 {
	return 2 * math.Sqrt(stiffness)
}

func (s *Stabilizer) Target() mgl64.Quat { return s.target }
func (s *Stabilizer) Stiffness() float64 { return s.stiffness }
func (s *Stabilizer) Damping() float64   { return s.damping }

// Acceleration returns the angular acceleration commanded for the given orientation and angular velocity.
func (s *Stabilizer) Acceleration(orientation mgl64.Quat, angularVelocity mgl64.Vec3) mgl64.Vec3 {
	e := RotationError(s.target, orientation)
	return e.Mul(s.stiffness).Sub(angularVelocity.Mul(s.damping))
}

// Torque returns the torque to apply to body for this tick without submitting it.
func (s *Stabilizer) Torque(body Body) (mgl64.Vec3, error) {
	if body == nil {
		return mgl64.Vec3{}, ErrNilBody
	}

	accel := s.Acceleration(body.Orientation(), body.AngularVelocity())
	return InertiaTorque(body.EffectiveInverseInertiaSqrt(), accel)
}

// Apply submits the corrective torque to every body.
//
// A failing body is logged and reported as a *BodyError in the returned error;
// it never stops the bodies after it.
func (s *Stabilizer) Apply(bodies []Body) error {
	var errs []error
	for i, body := range bodies {
		torque, err := s.Torque(body)
		if err != nil {
			s.logger.Error().Err(err).Int("body", i).Msg("stabilization skipped")
			errs = append(errs, &BodyError{Index: i, Err: err})
			continue
		}

		body.ApplyTorque(torque)
	}

	return errors.Join(errs...)
}
