package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces and torques
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// Their inverse inertia is zero, so torque controllers cannot drive them
	BodyTypeStatic
)

func (t BodyType) String() string {
	switch t {
	case BodyTypeDynamic:
		return "dynamic"
	case BodyTypeStatic:
		return "static"
	default:
		return "unknown"
	}
}

type Material struct {
	Density float64
	mass    float64

	LinearDamping  float64 // 1/s, typical: 0.01
	AngularDamping float64 // 1/s, typical: 0.05
}

func (material Material) GetMass() float64 {
	return material.mass
}

// RigidBody represents a rigid body in the simulation
type RigidBody struct {
	// Spatial properties
	PreviousTransform Transform
	Transform         Transform

	// Linear motion
	Velocity mgl64.Vec3 // Linear velocity (m/s)

	// Angular motion
	Omega mgl64.Vec3 // Angular velocity in world space (rad/s)

	// Inertia, in local space
	InertiaLocal            mgl64.Mat3
	InverseInertiaLocal     mgl64.Mat3
	InverseInertiaSqrtLocal mgl64.Mat3

	accumulatedForce   mgl64.Vec3
	accumulatedTorque  mgl64.Vec3
	accumulatedImpulse mgl64.Vec3

	// Physical properties
	Material Material
	BodyType BodyType // Dynamic or Static

	Shape ShapeInterface
}

// NewRigidBody creates a new rigid body with the given properties
// density is used to calculate mass for dynamic bodies (ignored for static)
func NewRigidBody(transform Transform, shape ShapeInterface, bodyType BodyType, density float64) *RigidBody {
	rb := &RigidBody{
		PreviousTransform: transform,
		Transform:         transform,
		Shape:             shape,
		BodyType:          bodyType,
	}

	if bodyType == BodyTypeStatic {
		// Static bodies have infinite mass
		rb.Material = Material{
			Density: 0,
			mass:    math.Inf(1),
		}
		return rb
	}

	rb.Material = Material{
		Density: density,
		mass:    shape.ComputeMass(density),
	}
	rb.InertiaLocal = shape.ComputeInertia(rb.Material.mass)
	rb.InverseInertiaLocal = rb.InertiaLocal.Inv()
	rb.InverseInertiaSqrtLocal = inverseSqrt(rb.InertiaLocal)

	return rb
}

// Integrate advances the body by dt with semi-implicit Euler.
// The accumulated torque impulse is consumed; force and torque keep acting until ClearForces,
// so that they span every substep of a world step.
func (rb *RigidBody) Integrate(dt float64, gravity mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic {
		rb.ClearForces()
		return
	}

	rb.PreviousTransform = rb.Transform

	// Linear
	accel := gravity.Add(rb.accumulatedForce.Mul(1.0 / rb.Material.GetMass()))
	rb.Velocity = rb.Velocity.Add(accel.Mul(dt))
	rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.Material.LinearDamping * dt))
	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))

	// Angular: Δω = I_world⁻¹ (τ·dt + J)
	momentum := rb.accumulatedTorque.Mul(dt).Add(rb.accumulatedImpulse)
	rb.Omega = rb.Omega.Add(rb.GetInverseInertiaWorld().Mul3x1(momentum))
	rb.Omega = rb.Omega.Mul(math.Exp(-rb.Material.AngularDamping * dt))

	// q' = q + ½·(ω, 0)·q·dt
	omegaQuat := mgl64.Quat{V: rb.Omega, W: 0}
	qDot := omegaQuat.Mul(rb.Transform.Rotation).Scale(0.5)
	rb.Transform.Rotation = rb.Transform.Rotation.Add(qDot.Scale(dt)).Normalize()

	rb.accumulatedImpulse = mgl64.Vec3{0, 0, 0}
}

// AddForce accumulates a force (N) for the next integration
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.BodyType != BodyTypeStatic {
		rb.accumulatedForce = rb.accumulatedForce.Add(force)
	}
}

// ApplyTorque accumulates a torque (N⋅m) acting over the next integration step
func (rb *RigidBody) ApplyTorque(torque mgl64.Vec3) {
	if rb.BodyType != BodyTypeStatic {
		rb.accumulatedTorque = rb.accumulatedTorque.Add(torque)
	}
}

// ApplyTorqueImpulse accumulates an angular impulse (N⋅m⋅s) applied at the next integration
func (rb *RigidBody) ApplyTorqueImpulse(impulse mgl64.Vec3) {
	if rb.BodyType != BodyTypeStatic {
		rb.accumulatedImpulse = rb.accumulatedImpulse.Add(impulse)
	}
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
	rb.accumulatedTorque = mgl64.Vec3{0, 0, 0}
	rb.accumulatedImpulse = mgl64.Vec3{0, 0, 0}
}

// AccumulatedTorque returns the torque waiting for the next integration
func (rb *RigidBody) AccumulatedTorque() mgl64.Vec3 {
	return rb.accumulatedTorque
}

// AccumulatedImpulse returns the angular impulse waiting for the next integration
func (rb *RigidBody) AccumulatedImpulse() mgl64.Vec3 {
	return rb.accumulatedImpulse
}

func (rb *RigidBody) Orientation() mgl64.Quat {
	return rb.Transform.Rotation
}

func (rb *RigidBody) AngularVelocity() mgl64.Vec3 {
	return rb.Omega
}

// GetInertiaWorld returns the inertia tensor in world space
func (rb *RigidBody) GetInertiaWorld() mgl64.Mat3 {
	// I_world = R * I_local * R^T
	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InertiaLocal).Mul3(R.Transpose())
}

// GetInverseInertiaWorld returns the inverse inertia tensor in world space
func (rb *RigidBody) GetInverseInertiaWorld() mgl64.Mat3 {
	if rb.BodyType == BodyTypeStatic {
		return mgl64.Mat3{0, 0, 0, 0, 0, 0, 0, 0, 0}
	}

	// I_world^(-1) = R * I_local^(-1) * R^T
	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InverseInertiaLocal).Mul3(R.Transpose())
}

// EffectiveInverseInertiaSqrt returns the square root of the world inverse inertia:
// R * sqrt(I_local^(-1)) * R^T. Zero for static bodies.
func (rb *RigidBody) EffectiveInverseInertiaSqrt() mgl64.Mat3 {
	if rb.BodyType == BodyTypeStatic {
		return mgl64.Mat3{0, 0, 0, 0, 0, 0, 0, 0, 0}
	}

	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InverseInertiaSqrtLocal).Mul3(R.Transpose())
}
