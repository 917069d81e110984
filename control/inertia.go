package control

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SingularityEpsilon is the |det| under which an inverse inertia square root, scaled to a unit
// Frobenius norm, is considered singular. The test does not depend on the body's mass or size.
const SingularityEpsilon = 1e-12

// InertiaTorque converts an angular acceleration into the torque producing it on a body
// whose world inverse inertia square root is m.
//
// With S = m^-1 the inertia square root, the torque is S*(S*accel), which equals I*accel.
// The inverse is computed on every call since the world frame inertia changes with orientation.
func InertiaTorque(m mgl64.Mat3, accel mgl64.Vec3) (mgl64.Vec3, error) {
	norm := frobenius(m)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return mgl64.Vec3{}, ErrSingularInertia
	}

	// Mat3.Inv returns the zero matrix for a tiny determinant, so invert at unit scale.
	unit := m.Mul(1 / norm)
	if math.Abs(unit.Det()) <= SingularityEpsilon {
		return mgl64.Vec3{}, ErrSingularInertia
	}

	s := unit.Inv().Mul(1 / norm)
	torque := s.Mul3x1(s.Mul3x1(accel))
	if !finite(torque) {
		return mgl64.Vec3{}, ErrSingularInertia
	}

	return torque, nil
}

func frobenius(m mgl64.Mat3) float64 {
	sum := 0.0
	for _, c := range m {
		sum += c * c
	}
	return math.Sqrt(sum)
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
