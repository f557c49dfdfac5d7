package spatialmath

import "github.com/golang/geo/r3"

// MillimetersPerMeter is the scale between the capture feed's unit and the unit of every
// stored or displayed position.
const MillimetersPerMeter = 1000.

// MetersToMillimeters scales a position in meters to millimeters.
func MetersToMillimeters(v r3.Vector) r3.Vector {
	return v.Mul(MillimetersPerMeter)
}

// MillimetersToMeters scales a position in millimeters to meters.
func MillimetersToMeters(v r3.Vector) r3.Vector {
	return r3.Vector{X: v.X / MillimetersPerMeter, Y: v.Y / MillimetersPerMeter, Z: v.Z / MillimetersPerMeter}
}
