// Package posesource defines how rigid body poses enter the system and provides a source that
// replays a recorded capture file.
package posesource

import (
	"context"

	"github.com/golang/geo/r3"

	"github.com/kneelab/femurtrack/spatialmath"
)

// Sample is one rigid body report from a motion-capture feed. Position is in meters and
// Rotation is a quaternion in x, y, z, w order, both exactly as the feed sends them.
type Sample struct {
	RigidBodyID int
	Position    [3]float64
	Rotation    [4]float64
}

// Pose converts the sample into a millimeter pose.
func (s Sample) Pose() spatialmath.Pose {
	meters := r3.Vector{X: s.Position[0], Y: s.Position[1], Z: s.Position[2]}
	return spatialmath.NewPose(spatialmath.MetersToMillimeters(meters), spatialmath.QuatFromXYZW(s.Rotation))
}

// SampleFromPose builds a feed sample from a millimeter pose.
func SampleFromPose(id int, pose spatialmath.Pose) Sample {
	meters := spatialmath.MillimetersToMeters(pose.Point)
	return Sample{
		RigidBodyID: id,
		Position:    [3]float64{meters.X, meters.Y, meters.Z},
		Rotation:    spatialmath.QuatToXYZW(pose.Orientation),
	}
}

// A Source delivers samples to fn until ctx is done or the source is exhausted. fn is called
// from a single goroutine.
type Source interface {
	Run(ctx context.Context, fn func(Sample)) error
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context, fn func(Sample)) error

// Run calls f.
func (f SourceFunc) Run(ctx context.Context, fn func(Sample)) error {
	return f(ctx, fn)
}
