package session

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/kneelab/femurtrack/spatialmath"
)

// CapturedPoint is a stored observation of both rigid bodies. Positions are in millimeters.
type CapturedPoint struct {
	Index  int
	Time   time.Time
	Femur  spatialmath.Pose
	Stylus spatialmath.Pose
}

// PointLog is an append-only list of captured points.
type PointLog struct {
	mu     sync.RWMutex
	points []CapturedPoint
}

// NewPointLog returns an empty log.
func NewPointLog() *PointLog {
	return &PointLog{}
}

// Append adds a point, numbering it after the points already in the log.
func (pl *PointLog) Append(at time.Time, femur, stylus spatialmath.Pose) CapturedPoint {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	p := CapturedPoint{Index: len(pl.points) + 1, Time: at, Femur: femur, Stylus: stylus}
	pl.points = append(pl.points, p)
	return p
}

// Len returns the number of points.
func (pl *PointLog) Len() int {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	return len(pl.points)
}

// All returns a copy of the points in capture order.
func (pl *PointLog) All() []CapturedPoint {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	return append([]CapturedPoint(nil), pl.points...)
}

// Store appends the current femur and stylus poses to the session's point log.
func (s *Session) Store() (CapturedPoint, error) {
	s.mu.RLock()
	femur, stylus := copyPose(s.femur), copyPose(s.stylus)
	s.mu.RUnlock()

	if femur == nil {
		return CapturedPoint{}, errors.Wrapf(ErrNoFemurData, "cannot store point (femur id %d)", s.cfg.FemurID)
	}
	if stylus == nil {
		return CapturedPoint{}, errors.Wrapf(ErrNoStylusData, "cannot store point (stylus id %d)", s.cfg.StylusID)
	}
	p := s.points.Append(s.clock.Now(), *femur, *stylus)
	s.logger.Debugw("point stored", "session", s.id.String(), "index", p.Index)
	return p, nil
}

// Points returns the captured points in order.
func (s *Session) Points() []CapturedPoint {
	return s.points.All()
}
