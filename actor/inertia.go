package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// inverseSqrt returns S such that S*S = inertia^-1, for a symmetric positive definite inertia tensor.
// A tensor with a non-positive (or non-finite) principal moment has no such root and yields the zero matrix.
func inverseSqrt(inertia mgl64.Mat3) mgl64.Mat3 {
	sym := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			// Average both halves so a slightly asymmetric tensor stays usable.
			sym.SetSym(i, j, 0.5*(inertia.At(i, j)+inertia.At(j, i)))
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return mgl64.Mat3{}
	}

	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	var scale [3]float64
	for k, v := range values {
		if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return mgl64.Mat3{}
		}
		scale[k] = 1 / math.Sqrt(v)
	}

	// S = V * diag(1/sqrt(λ)) * Vᵀ
	var s mgl64.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum := 0.0
			for k := 0; k < 3; k++ {
				sum += vectors.At(i, k) * scale[k] * vectors.At(j, k)
			}
			s.Set(i, j, sum)
		}
	}

	return s
}
