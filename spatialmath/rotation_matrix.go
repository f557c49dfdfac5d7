package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// RotationMatrix is a 3x3 matrix in row major order.
// m[3*r + c] is the element in the r'th row and c'th column.
type RotationMatrix struct {
	mat [9]float64
}

// NewRotationMatrix creates a rotation matrix from nine row major values.
func NewRotationMatrix(m [9]float64) *RotationMatrix {
	return &RotationMatrix{mat: m}
}

// NewIdentityRotationMatrix returns the matrix of the zero rotation.
func NewIdentityRotationMatrix() *RotationMatrix {
	return &RotationMatrix{mat: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

// RotationMatrixXYZW converts a quaternion given as x, y, z, w components into a rotation
// matrix. The magnitude of q does not matter, it is normalized first; a zero quaternion gives
// the identity matrix.
func RotationMatrixXYZW(q [4]float64) *RotationMatrix {
	return QuatToRotationMatrix(QuatFromXYZW(q))
}

// QuatToRotationMatrix converts a quaternion into a rotation matrix.
// See https://www.euclideanspace.com/maths/geometry/rotations/conversions/quaternionToMatrix/
func QuatToRotationMatrix(q quat.Number) *RotationMatrix {
	n, ok := NormalizeQuat(q)
	if !ok {
		return NewIdentityRotationMatrix()
	}
	w, x, y, z := n.Real, n.Imag, n.Jmag, n.Kmag

	return &RotationMatrix{mat: [9]float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	}}
}

// At returns the float corresponding to the element at the specified location.
func (rm *RotationMatrix) At(row, col int) float64 {
	return rm.mat[3*row+col]
}

// Row returns the specified row as a vector.
func (rm *RotationMatrix) Row(row int) r3.Vector {
	i := 3 * row
	return r3.Vector{X: rm.mat[i], Y: rm.mat[i+1], Z: rm.mat[i+2]}
}

// Col returns the specified column as a vector.
func (rm *RotationMatrix) Col(col int) r3.Vector {
	return r3.Vector{X: rm.mat[col], Y: rm.mat[col+3], Z: rm.mat[col+6]}
}

// Mul returns R·v.
func (rm *RotationMatrix) Mul(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: rm.Row(0).Dot(v),
		Y: rm.Row(1).Dot(v),
		Z: rm.Row(2).Dot(v),
	}
}

// TransposeMul returns Rᵀ·v. For a rotation this is the inverse rotation, which re-expresses a
// world vector in the rotated frame's own axes.
func (rm *RotationMatrix) TransposeMul(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: rm.Col(0).Dot(v),
		Y: rm.Col(1).Dot(v),
		Z: rm.Col(2).Dot(v),
	}
}

// Transpose returns a new matrix that is the transpose of rm.
func (rm *RotationMatrix) Transpose() *RotationMatrix {
	m := rm.mat
	return &RotationMatrix{mat: [9]float64{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}}
}

// MatMul returns rm·other.
func (rm *RotationMatrix) MatMul(other *RotationMatrix) *RotationMatrix {
	var out [9]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[3*r+c] = rm.Row(r).Dot(other.Col(c))
		}
	}
	return &RotationMatrix{mat: out}
}

// Det returns the determinant, 1 for a proper rotation.
func (rm *RotationMatrix) Det() float64 {
	return mat.Det(rm.Dense())
}

// Dense returns a copy of the matrix as a gonum dense matrix.
func (rm *RotationMatrix) Dense() *mat.Dense {
	data := rm.mat
	return mat.NewDense(3, 3, data[:])
}

func (rm *RotationMatrix) String() string {
	return fmt.Sprintf("[[%f %f %f] [%f %f %f] [%f %f %f]]",
		rm.mat[0], rm.mat[1], rm.mat[2],
		rm.mat[3], rm.mat[4], rm.mat[5],
		rm.mat[6], rm.mat[7], rm.mat[8])
}
