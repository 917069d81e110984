package poise

import (
	"github.com/akmonengine/poise/control"
	"github.com/akmonengine/poise/telemetry"
)

// PerturbSystem runs the one-shot perturbation over the world's bodies.
func PerturbSystem(p *control.Perturber, metrics *telemetry.Metrics) System {
	return func(w *World) error {
		if p.Triggered() {
			return nil
		}

		bodies := w.ControlBodies()
		err := p.Apply(bodies)

		failed := len(control.BodyErrors(err))
		metrics.ObservePerturbation()
		metrics.ObserveTorques(telemetry.KindImpulse, len(bodies)-failed)
		metrics.ObserveFailures("perturber", failed)

		return err
	}
}

// StabilizeSystem runs the orientation controller over the world's bodies.
func StabilizeSystem(s *control.Stabilizer, metrics *telemetry.Metrics) System {
	return func(w *World) error {
		bodies := w.ControlBodies()
		err := s.Apply(bodies)

		failed := len(control.BodyErrors(err))
		metrics.ObserveTorques(telemetry.KindTorque, len(bodies)-failed)
		metrics.ObserveFailures("stabilizer", failed)

		if metrics != nil {
			for i, b := range bodies {
				metrics.SetErrorAngle(i, control.RotationError(s.Target(), b.Orientation()).Len())
			}
		}

		return err
	}
}
