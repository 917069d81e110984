package poise

import (
	"fmt"

	"github.com/akmonengine/poise/actor"
	"github.com/akmonengine/poise/config"
	"github.com/akmonengine/poise/control"
	"github.com/akmonengine/poise/telemetry"
	"github.com/rs/zerolog"
)

const (
	SystemPerturb   = "perturb"
	SystemStabilize = "stabilize"
)

// Simulation is a world with both controllers registered on its schedule.
type Simulation struct {
	*Schedule

	Stabilizer *control.Stabilizer
	// Perturber is nil when the perturbation is disabled.
	Perturber *control.Perturber

	dt       float64
	duration float64
}

// NewSimulation builds the bodies described by cfg and wires the controllers:
// the perturbation at its fixed interval, the stabilization on every tick.
func NewSimulation(cfg *config.Config, logger zerolog.Logger, metrics *telemetry.Metrics) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stabilizer, err := control.NewStabilizer(control.Config{
		Target:    cfg.TargetOrientation(),
		Stiffness: cfg.Controller.Stiffness,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("stabilizer: %w", err)
	}

	world := &World{
		Gravity:  cfg.Gravity.Mgl(),
		Substeps: max(1, cfg.Substeps),
		Workers:  max(DEFAULT_WORKERS, cfg.Workers),
	}
	for _, b := range cfg.Bodies {
		world.AddBody(NewBody(b))
	}

	sim := &Simulation{
		Schedule:   NewSchedule(world, logger, metrics),
		Stabilizer: stabilizer,
		dt:         cfg.Dt,
		duration:   cfg.Duration,
	}

	if cfg.Perturbation.Enabled {
		sim.Perturber = control.NewPerturber(cfg.Perturbation.Acceleration.Mgl(), logger)
		if err := sim.AddFixedSystem(SystemPerturb, cfg.Perturbation.Interval, PerturbSystem(sim.Perturber, metrics)); err != nil {
			return nil, err
		}
	}
	sim.AddSystem(SystemStabilize, StabilizeSystem(stabilizer, metrics))

	logger.Info().
		Int("bodies", len(world.Bodies)).
		Float64("stiffness", stabilizer.Stiffness()).
		Float64("damping", stabilizer.Damping()).
		Bool("perturbation", cfg.Perturbation.Enabled).
		Msg("simulation ready")

	return sim, nil
}

// NewBody creates the rigid body described by b.
func NewBody(b config.BodyConfig) *actor.RigidBody {
	var shape actor.ShapeInterface
	switch b.Shape {
	case config.ShapeSphere:
		shape = &actor.Sphere{Radius: b.Radius}
	default:
		shape = &actor.Box{HalfExtents: b.HalfExtents.Mgl()}
	}

	bodyType := actor.BodyTypeDynamic
	if b.Static {
		bodyType = actor.BodyTypeStatic
	}

	transform := actor.Transform{
		Position: b.Position.Mgl(),
		Rotation: b.Orientation.Mgl(),
	}

	rb := actor.NewRigidBody(transform, shape, bodyType, b.Density)
	if bodyType == actor.BodyTypeDynamic {
		rb.Omega = b.AngularVelocity.Mgl()
		rb.Material.LinearDamping = b.LinearDamping
		rb.Material.AngularDamping = b.AngularDamping
	}

	return rb
}

// Dt returns the configured tick length.
func (s *Simulation) Dt() float64 { return s.dt }

// Duration returns the configured run length.
func (s *Simulation) Duration() float64 { return s.duration }

// ErrorAngles returns the current orientation error angle of every body, in radians.
func (s *Simulation) ErrorAngles() []float64 {
	angles := make([]float64, len(s.world.Bodies))
	for i, b := range s.world.Bodies {
		angles[i] = control.RotationError(s.Stabilizer.Target(), b.Orientation()).Len()
	}
	return angles
}
