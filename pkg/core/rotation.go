package core

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// RotationMatrix maps observer-frame coordinates into the model frame.
type RotationMatrix [3][3]float64

// NewRotationMatrix builds the image rotation Rx(theta)*Rz(phi):
// phi spins the model about the line of sight, theta then inclines it
// toward the observer. Both angles are in radians.
func NewRotationMatrix(theta, phi float64) RotationMatrix {
	rx := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, math.Cos(theta), -math.Sin(theta),
		0, math.Sin(theta), math.Cos(theta),
	})
	rz := mat.NewDense(3, 3, []float64{
		math.Cos(phi), math.Sin(phi), 0,
		-math.Sin(phi), math.Cos(phi), 0,
		0, 0, 1,
	})

	var prod mat.Dense
	prod.Mul(rx, rz)

	var m RotationMatrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = prod.At(i, j)
		}
	}
	return m
}

// Identity returns the no-op rotation.
func Identity() RotationMatrix {
	return RotationMatrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Apply rotates v from the observer frame into the model frame.
func (m RotationMatrix) Apply(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// ApplyTranspose rotates v from the model frame into the observer
// frame. The matrix is orthonormal, so the transpose is its inverse.
func (m RotationMatrix) ApplyTranspose(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0][0]*v.X + m[1][0]*v.Y + m[2][0]*v.Z,
		Y: m[0][1]*v.X + m[1][1]*v.Y + m[2][1]*v.Z,
		Z: m[0][2]*v.X + m[1][2]*v.Y + m[2][2]*v.Z,
	}
}
