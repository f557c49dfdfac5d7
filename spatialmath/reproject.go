package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// ReprojectionRequest holds everything needed to follow one target point from a reference
// tracker pose to a current tracker pose.
type ReprojectionRequest struct {
	Reference       Pose
	ReferenceTarget r3.Vector
	Current         Pose
}

// Reproject computes the current target position for the request.
func (req ReprojectionRequest) Reproject() r3.Vector {
	return ReprojectPose(req.Reference, req.ReferenceTarget, req.Current)
}

// Offset returns the displacement of target from tracker, in world axes.
func Offset(tracker, target r3.Vector) r3.Vector {
	return target.Sub(tracker)
}

// ReprojectPose is Reproject on poses.
func ReprojectPose(reference Pose, referenceTarget r3.Vector, current Pose) r3.Vector {
	return Reproject(reference.Point, reference.Orientation, referenceTarget, current.Point, current.Orientation)
}

// Reproject returns where a point rigidly attached to a tracker has moved to. At reference time
// the tracker was at refPos with orientation refOri and the point was at refTarget; the tracker
// is now at newPos with orientation newOri.
//
// The world-axis offset from tracker to target is rotated into the tracker's local axes using
// the reference orientation, then back out to world axes using the new orientation, and added
// to the new tracker position. All positions must share one length unit.
func Reproject(refPos r3.Vector, refOri quat.Number, refTarget, newPos r3.Vector, newOri quat.Number) r3.Vector {
	rRef := QuatToRotationMatrix(refOri)
	rNew := QuatToRotationMatrix(newOri)

	offsetWorld := Offset(refPos, refTarget)
	offsetLocal := rRef.TransposeMul(offsetWorld)
	return newPos.Add(rNew.Mul(offsetLocal))
}
