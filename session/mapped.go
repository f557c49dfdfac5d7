package session

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"github.com/kneelab/femurtrack/landmark"
	"github.com/kneelab/femurtrack/spatialmath"
)

// MappedPoint is a catalog landmark located from the current femur pose.
type MappedPoint struct {
	Entry      landmark.Entry
	Femur      spatialmath.Pose
	Calculated r3.Vector
	// Transform has the femur's current rotation and the landmark position as translation.
	Transform mgl64.Mat4
}

// MappedPoint locates the landmark label from catalog using the current femur pose.
func (s *Session) MappedPoint(catalog *landmark.Catalog, label string) (MappedPoint, error) {
	femur, err := s.currentFemur()
	if err != nil {
		return MappedPoint{}, err
	}
	entry, err := catalog.Get(label)
	if err != nil {
		return MappedPoint{}, err
	}
	return LocateLandmark(entry, femur), nil
}

// LocateLandmark reprojects entry to the given femur pose.
func LocateLandmark(entry landmark.Entry, femur spatialmath.Pose) MappedPoint {
	calculated := entry.Reproject(femur)
	return MappedPoint{
		Entry:      entry,
		Femur:      femur,
		Calculated: calculated,
		Transform:  spatialmath.TargetTransform(femur, calculated),
	}
}

// PairPosition is a lateral/medial landmark pair located from the current femur pose.
type PairPosition struct {
	Index   int
	Lateral r3.Vector
	Medial  r3.Vector
}

// Midpoint returns the point halfway between the two landmarks.
func (pp PairPosition) Midpoint() r3.Vector {
	return pp.Lateral.Add(pp.Medial).Mul(0.5)
}

// MappedPairs locates every L/M pair in catalog using the current femur pose.
func (s *Session) MappedPairs(catalog *landmark.Catalog) ([]PairPosition, error) {
	femur, err := s.currentFemur()
	if err != nil {
		return nil, err
	}
	pairs := catalog.Pairs()
	out := make([]PairPosition, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, PairPosition{
			Index:   p.Index,
			Lateral: p.Lateral.Reproject(femur),
			Medial:  p.Medial.Reproject(femur),
		})
	}
	return out, nil
}
