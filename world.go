// Package poise hosts rigid bodies and schedules the orientation controllers over them.
package poise

import (
	"github.com/akmonengine/poise/actor"
	"github.com/akmonengine/poise/control"
	"github.com/go-gl/mathgl/mgl64"
)

const DEFAULT_WORKERS = 1

type World struct {
	// List of all rigid bodies in the world
	Bodies []*actor.RigidBody
	// Gravity acceleration (m/s², or N/kg)
	Gravity  mgl64.Vec3
	Substeps int
	Workers  int
}

// AddBody adds a rigid body to the world. A nil body is ignored.
func (w *World) AddBody(body *actor.RigidBody) {
	if body == nil {
		return
	}
	w.Bodies = append(w.Bodies, body)
}

// RemoveBody removes a rigid body from the world
func (w *World) RemoveBody(body *actor.RigidBody) {
	k := -1
	for i, b := range w.Bodies {
		if b == body {
			k = i
			break
		}
	}

	if k != -1 {
		w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
	}
}

// ControlBodies returns the bodies as the set tracked by the controllers, in world order.
// A nil entry stays a nil Body so the controllers report it instead of dereferencing it.
func (w *World) ControlBodies() []control.Body {
	bodies := make([]control.Body, len(w.Bodies))
	for i, b := range w.Bodies {
		if b != nil {
			bodies[i] = b
		}
	}
	return bodies
}

// Step integrates every body over dt, split in Substeps.
// Torques submitted before Step act over all substeps; impulses are applied on the first one.
func (w *World) Step(dt float64) {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	substeps := max(1, w.Substeps)
	h := dt / float64(substeps)

	for range substeps {
		w.integrate(h)
	}

	for _, body := range w.Bodies {
		body.ClearForces()
	}
}

func (w *World) integrate(h float64) {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.Integrate(h, w.Gravity)
	})
}
