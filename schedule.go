package poise

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akmonengine/poise/telemetry"
	"github.com/rs/zerolog"
)

// fixedTolerance absorbs the rounding of summed tick lengths, so that 180 ticks of 1/60 s
// make up a 3 s step.
const fixedTolerance = 1e-9

var (
	ErrInvalidTimestep = errors.New("poise: timestep must be positive")
	ErrInvalidDuration = errors.New("poise: duration must be positive")
)

// System is a callback run by a Schedule against the world, after physics.
type System func(w *World) error

// Observer is notified after every tick with the elapsed simulation time.
type Observer interface {
	OnTick(t float64, w *World)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(t float64, w *World)

func (f ObserverFunc) OnTick(t float64, w *World) { f(t, w) }

type namedSystem struct {
	name string
	fn   System
}

type fixedSystem struct {
	namedSystem
	step        float64
	accumulator float64
}

// Schedule drives a World: every tick it steps physics, then runs the fixed-cadence systems
// whose step has elapsed, then the per-tick systems.
type Schedule struct {
	world     *World
	systems   []namedSystem
	fixed     []*fixedSystem
	observers []Observer

	logger  zerolog.Logger
	metrics *telemetry.Metrics

	elapsed float64
	ticks   int
}

// NewSchedule returns an empty schedule over world. metrics may be nil.
func NewSchedule(world *World, logger zerolog.Logger, metrics *telemetry.Metrics) *Schedule {
	return &Schedule{
		world:   world,
		logger:  logger.With().Str("component", "schedule").Logger(),
		metrics: metrics,
	}
}

// AddSystem registers fn to run on every tick.
func (s *Schedule) AddSystem(name string, fn System) {
	s.systems = append(s.systems, namedSystem{name: name, fn: fn})
}

// AddFixedSystem registers fn to run each time step seconds of simulation time have accumulated.
// The first run happens once a full step has elapsed.
func (s *Schedule) AddFixedSystem(name string, step float64, fn System) error {
	if step <= 0 {
		return fmt.Errorf("fixed system %q: %w", name, ErrInvalidTimestep)
	}

	s.fixed = append(s.fixed, &fixedSystem{namedSystem: namedSystem{name: name, fn: fn}, step: step})
	return nil
}

func (s *Schedule) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

func (s *Schedule) World() *World    { return s.world }
func (s *Schedule) Elapsed() float64 { return s.elapsed }
func (s *Schedule) Ticks() int       { return s.ticks }

// Tick advances the simulation by dt and runs the due systems.
// A failing system is logged and its error joined into the result; the others still run.
func (s *Schedule) Tick(dt float64) error {
	if dt <= 0 {
		return ErrInvalidTimestep
	}

	start := time.Now()

	s.world.Step(dt)
	s.elapsed += dt
	s.ticks++

	var errs []error
	for _, f := range s.fixed {
		f.accumulator += dt
		for f.accumulator >= f.step-fixedTolerance {
			f.accumulator -= f.step
			errs = s.run(f.namedSystem, errs)
		}
	}
	for _, sys := range s.systems {
		errs = s.run(sys, errs)
	}

	s.metrics.ObserveTick(time.Since(start).Seconds())

	for _, o := range s.observers {
		o.OnTick(s.elapsed, s.world)
	}

	return errors.Join(errs...)
}

func (s *Schedule) run(sys namedSystem, errs []error) []error {
	if err := sys.fn(s.world); err != nil {
		s.logger.Warn().Err(err).Str("system", sys.name).Int("tick", s.ticks).Msg("system failed")
		errs = append(errs, fmt.Errorf("%s: %w", sys.name, err))
	}
	return errs
}

// Run ticks with a fixed dt until duration seconds of simulation time have elapsed or ctx is done.
// System failures are logged by Tick and do not stop the run.
func (s *Schedule) Run(ctx context.Context, dt, duration float64) error {
	if dt <= 0 {
		return ErrInvalidTimestep
	}
	if duration <= 0 {
		return ErrInvalidDuration
	}

	steps := int(duration/dt + 1e-9)
	failed := 0
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.Tick(dt); err != nil {
			failed++
		}
	}

	s.logger.Debug().Int("ticks", steps).Int("failed_ticks", failed).Float64("elapsed", s.elapsed).Msg("run finished")
	return nil
}
