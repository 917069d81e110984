// Package control drives rigid bodies toward a target orientation with torque commands.
//
// The package never integrates motion itself. A host physics engine exposes each body
// through the Body interface, the controllers read a snapshot of it and submit torques,
// and the host integrates those on its next step.
package control

import "github.com/go-gl/mathgl/mgl64"

// Body is the view of a rigid body the controllers need from the host engine.
//
// Controllers reject a nil Body with ErrNilBody. A typed nil pointer wrapped in a Body is not
// nil and must be converted by the host before it is handed over.
type Body interface {
	// Orientation returns the current world orientation as a unit quaternion.
	Orientation() mgl64.Quat
	// AngularVelocity returns the world angular velocity (rad/s).
	AngularVelocity() mgl64.Vec3
	// EffectiveInverseInertiaSqrt returns the square root of the inverse inertia tensor, in world frame.
	EffectiveInverseInertiaSqrt() mgl64.Mat3

	// ApplyTorque adds a torque acting over the current step.
	ApplyTorque(torque mgl64.Vec3)
	// ApplyTorqueImpulse adds an instantaneous change of angular momentum.
	ApplyTorqueImpulse(impulse mgl64.Vec3)
}
