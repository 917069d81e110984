package control

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// DefaultPerturbation is the angular acceleration (rad/s²) injected by a default Perturber.
var DefaultPerturbation = mgl64.Vec3{10, 0, 0}

// Perturber kicks every tracked body once with a fixed angular acceleration,
// turned into a torque impulse through each body's own inertia.
type Perturber struct {
	acceleration mgl64.Vec3
	gate         Gate
	logger       zerolog.Logger
}

// NewPerturber returns a Perturber that has not fired yet.
func NewPerturber(acceleration mgl64.Vec3, logger zerolog.Logger) *Perturber {
	return &Perturber{
		acceleration: acceleration,
		logger:       logger.With().Str("component", "perturber").Logger(),
	}
}

// Acceleration returns the angular acceleration applied on the first call to Apply.
func (p *Perturber) Acceleration() mgl64.Vec3 {
	return p.acceleration
}

// State returns the state of the one-shot gate.
func (p *Perturber) State() GateState {
	return p.gate.State()
}

// Triggered reports whether the impulse has already been handed out.
func (p *Perturber) Triggered() bool {
	return p.gate.State() == Triggered
}

// Apply submits the torque impulse to every body on its first call and does nothing afterwards,
// however often and from however many goroutines it is called.
//
// A body whose inertia is singular gets no impulse; it is reported as a *BodyError
// in the returned error and the remaining bodies are still kicked.
func (p *Perturber) Apply(bodies []Body) error {
	if !p.gate.Trigger() {
		return nil
	}

	var errs []error
	for i, body := range bodies {
		if body == nil {
			errs = append(errs, &BodyError{Index: i, Err: ErrNilBody})
			continue
		}

		impulse, err := InertiaTorque(body.EffectiveInverseInertiaSqrt(), p.acceleration)
		if err != nil {
			p.logger.Error().Err(err).Int("body", i).Msg("perturbation skipped")
			errs = append(errs, &BodyError{Index: i, Err: err})
			continue
		}

		body.ApplyTorqueImpulse(impulse)
	}

	p.logger.Debug().Int("bodies", len(bodies)).Int("failed", len(errs)).Msg("perturbation applied")

	return errors.Join(errs...)
}
