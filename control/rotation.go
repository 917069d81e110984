package control

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// sineEpsilon is the |sin(angle/2)| under which a rotation is treated as the identity.
const sineEpsilon = 1e-12

// RotationError returns the rotation vector carrying current onto target:
// the axis of q_err = target * conjugate(current) scaled by its angle in radians.
//
// q and -q describe the same rotation; the error is taken on the hemisphere with w >= 0
// so the returned angle never exceeds pi. The shorter rotation is preferred over the raw
// 2*acos(w) angle, which would turn a body the long way round past pi.
func RotationError(target, current mgl64.Quat) mgl64.Vec3 {
	q := target.Mul(current.Conjugate())
	if q.W < 0 {
		q = q.Scale(-1)
	}

	return RotationVector(q)
}

// AxisAngle converts q to an axis and an angle in [0, 2pi].
// The identity rotation, and anything within sineEpsilon of it, yields a zero axis and a zero angle.
func AxisAngle(q mgl64.Quat) (mgl64.Vec3, float64) {
	if l := q.Len(); l > 0 && l != 1 {
		q = q.Scale(1 / l)
	}

	sinHalf := q.V.Len()
	if sinHalf < sineEpsilon {
		return mgl64.Vec3{}, 0
	}

	angle := 2 * math.Atan2(sinHalf, q.W)
	return q.V.Mul(1 / sinHalf), angle
}

// RotationVector returns axis * angle for q, the zero vector for the identity.
func RotationVector(q mgl64.Quat) mgl64.Vec3 {
	axis, angle := AxisAngle(q)
	return axis.Mul(angle)
}

// FromRotationVector is the inverse of RotationVector.
func FromRotationVector(v mgl64.Vec3) mgl64.Quat {
	angle := v.Len()
	if angle < sineEpsilon {
		return mgl64.QuatIdent()
	}

	return mgl64.QuatRotate(angle, v.Mul(1/angle))
}

// IsUnit reports whether q has unit length within tolerance.
func IsUnit(q mgl64.Quat, tolerance float64) bool {
	return math.Abs(q.Len()-1) <= tolerance
}
