// Package spatialmath defines the rigid body math used to follow a tracked point: quaternion
// orientations, rotation matrices, poses and offset reprojection.
package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// quaternions are carried as gonum's quat.Number: Real is w, Imag/Jmag/Kmag are x/y/z.

// NewZeroOrientation returns the quaternion which signifies no rotation.
func NewZeroOrientation() quat.Number {
	return quat.Number{Real: 1}
}

// NormalizeQuat scales q to unit length. A zero magnitude quaternion has no direction to
// recover, so the identity is returned with ok set to false. Motion capture feeds report all
// zero rotations before the first frame arrives, which is why this is not an error.
func NormalizeQuat(q quat.Number) (normalized quat.Number, ok bool) {
	norm := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if norm == 0 {
		return NewZeroOrientation(), false
	}
	return quat.Scale(1/norm, q), true
}

// QuatFromXYZW builds a quaternion from components in x, y, z, w order, the order used by the
// capture feed.
func QuatFromXYZW(q [4]float64) quat.Number {
	return quat.Number{Real: q[3], Imag: q[0], Jmag: q[1], Kmag: q[2]}
}

// QuatFromWXYZ builds a quaternion from components in w, x, y, z order, the order used by the
// landmark catalog and the export file.
func QuatFromWXYZ(q [4]float64) quat.Number {
	return quat.Number{Real: q[0], Imag: q[1], Jmag: q[2], Kmag: q[3]}
}

// QuatToXYZW returns the components of q in x, y, z, w order.
func QuatToXYZW(q quat.Number) [4]float64 {
	return [4]float64{q.Imag, q.Jmag, q.Kmag, q.Real}
}

// QuatToWXYZ returns the components of q in w, x, y, z order.
func QuatToWXYZ(q quat.Number) [4]float64 {
	return [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag}
}

// QuaternionAlmostEqual is an equality test for all the float components of a quaternion.
// Quaternions have double coverage, q and -q are the same rotation, so both signs are accepted.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	same := math.Abs(a.Real-b.Real) < tol &&
		math.Abs(a.Imag-b.Imag) < tol &&
		math.Abs(a.Jmag-b.Jmag) < tol &&
		math.Abs(a.Kmag-b.Kmag) < tol
	if same {
		return true
	}
	return math.Abs(a.Real+b.Real) < tol &&
		math.Abs(a.Imag+b.Imag) < tol &&
		math.Abs(a.Jmag+b.Jmag) < tol &&
		math.Abs(a.Kmag+b.Kmag) < tol
}

// OrientationBetween returns the rotation that takes o1 to o2.
func OrientationBetween(o1, o2 quat.Number) quat.Number {
	n1, _ := NormalizeQuat(o1)
	n2, _ := NormalizeQuat(o2)
	return quat.Mul(n2, quat.Conj(n1))
}
