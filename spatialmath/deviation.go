package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Deviation is the difference between a computed position and one measured independently.
type Deviation struct {
	// Delta is measured minus computed.
	Delta     r3.Vector
	Magnitude float64
}

// NewDeviation returns how far measured lies from computed.
func NewDeviation(computed, measured r3.Vector) Deviation {
	delta := measured.Sub(computed)
	return Deviation{Delta: delta, Magnitude: delta.Norm()}
}

func (d Deviation) String() string {
	return fmt.Sprintf("dX=%+.2f dY=%+.2f dZ=%+.2f |d|=%.2f", d.Delta.X, d.Delta.Y, d.Delta.Z, d.Magnitude)
}
