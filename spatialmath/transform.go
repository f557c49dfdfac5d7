package spatialmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// TargetTransform returns the homogeneous transform whose rotation is the tracker's current
// orientation and whose translation is the reconstructed target position.
func TargetTransform(current Pose, target r3.Vector) mgl64.Mat4 {
	rm := current.RotationMatrix()
	// mgl64 matrices are column major.
	return mgl64.Mat4{
		rm.At(0, 0), rm.At(1, 0), rm.At(2, 0), 0,
		rm.At(0, 1), rm.At(1, 1), rm.At(2, 1), 0,
		rm.At(0, 2), rm.At(1, 2), rm.At(2, 2), 0,
		target.X, target.Y, target.Z, 1,
	}
}

// TransformPoint applies a homogeneous transform to a point.
func TransformPoint(m mgl64.Mat4, p r3.Vector) r3.Vector {
	out := m.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	return r3.Vector{X: out.X(), Y: out.Y(), Z: out.Z()}
}
