package control

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// testBody is a free rigid body integrated with explicit Euler, standing in for the host engine.
type testBody struct {
	mu sync.Mutex

	orientation     mgl64.Quat
	angularVelocity mgl64.Vec3
	invInertiaSqrt  mgl64.Mat3

	torque   mgl64.Vec3
	impulse  mgl64.Vec3
	impulses int
}

func newTestBody(orientation mgl64.Quat, invInertiaSqrt mgl64.Mat3) *testBody {
	return &testBody{orientation: orientation, invInertiaSqrt: invInertiaSqrt}
}

func (b *testBody) Orientation() mgl64.Quat                 { return b.orientation }
func (b *testBody) AngularVelocity() mgl64.Vec3             { return b.angularVelocity }
func (b *testBody) EffectiveInverseInertiaSqrt() mgl64.Mat3 { return b.invInertiaSqrt }

func (b *testBody) ApplyTorque(torque mgl64.Vec3) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.torque = b.torque.Add(torque)
}

func (b *testBody) ApplyTorqueImpulse(impulse mgl64.Vec3) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.impulse = b.impulse.Add(impulse)
	b.impulses++
}

// step integrates the accumulated commands: w' = w + I^-1 (torque*dt + impulse), q' = integrate(q, w', dt).
func (b *testBody) step(dt float64) {
	invInertia := b.invInertiaSqrt.Mul3(b.invInertiaSqrt)
	dw := invInertia.Mul3x1(b.torque.Mul(dt).Add(b.impulse))
	b.angularVelocity = b.angularVelocity.Add(dw)
	b.orientation = integrateOrientation(b.orientation, b.angularVelocity, dt)
	b.torque = mgl64.Vec3{}
	b.impulse = mgl64.Vec3{}
}

func integrateOrientation(q mgl64.Quat, w mgl64.Vec3, dt float64) mgl64.Quat {
	qDot := mgl64.Quat{V: w, W: 0}.Mul(q).Scale(0.5)
	return q.Add(qDot.Scale(dt)).Normalize()
}

func diag(x, y, z float64) mgl64.Mat3 {
	return mgl64.Mat3{
		x, 0, 0,
		0, y, 0,
		0, 0, z,
	}
}

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

func vec3AlmostEqual(a, b mgl64.Vec3, epsilon float64) bool {
	return almostEqual(a.X(), b.X(), epsilon) &&
		almostEqual(a.Y(), b.Y(), epsilon) &&
		almostEqual(a.Z(), b.Z(), epsilon)
}

// sameRotation treats q and -q as equal.
func sameRotation(a, b mgl64.Quat, epsilon float64) bool {
	return almostEqual(math.Abs(a.Dot(b)), 1, epsilon)
}
