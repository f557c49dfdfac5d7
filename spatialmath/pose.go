package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is a position and orientation of a tracked rigid body. The length unit of Point is
// whatever the caller chose; every pose that takes part in one computation must share it.
type Pose struct {
	Point       r3.Vector
	Orientation quat.Number
}

// NewPose returns a pose at the given point and orientation.
func NewPose(point r3.Vector, orientation quat.Number) Pose {
	return Pose{Point: point, Orientation: orientation}
}

// NewPoseFromPoint returns a pose at the given point with no rotation.
func NewPoseFromPoint(point r3.Vector) Pose {
	return Pose{Point: point, Orientation: NewZeroOrientation()}
}

// NewZeroPose returns a pose at the origin with no rotation.
func NewZeroPose() Pose {
	return NewPoseFromPoint(r3.Vector{})
}

// RotationMatrix returns the orientation of the pose as a rotation matrix.
func (p Pose) RotationMatrix() *RotationMatrix {
	return QuatToRotationMatrix(p.Orientation)
}

// Scale returns the pose with its point multiplied by factor. Orientation is unitless.
func (p Pose) Scale(factor float64) Pose {
	return Pose{Point: p.Point.Mul(factor), Orientation: p.Orientation}
}

func (p Pose) String() string {
	wxyz := QuatToWXYZ(p.Orientation)
	return fmt.Sprintf("{X:%.2f Y:%.2f Z:%.2f | W:%.3f X:%.3f Y:%.3f Z:%.3f}",
		p.Point.X, p.Point.Y, p.Point.Z, wxyz[0], wxyz[1], wxyz[2], wxyz[3])
}

// PoseAlmostEqual returns whether two poses are equal within tol, comparing points
// componentwise and orientations up to sign.
func PoseAlmostEqual(a, b Pose, tol float64) bool {
	return R3VectorAlmostEqual(a.Point, b.Point, tol) &&
		QuaternionAlmostEqual(a.Orientation, b.Orientation, tol)
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon && math.Abs(a.Z-b.Z) < epsilon
}
