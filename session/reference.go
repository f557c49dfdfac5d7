package session

import (
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/kneelab/femurtrack/spatialmath"
)

// Reference is the femur and stylus poses at the moment the reference was captured.
type Reference struct {
	Time   time.Time
	Femur  spatialmath.Pose
	Stylus spatialmath.Pose
}

// Offset returns the stylus offset from the femur tracker at reference time, world axes.
func (r Reference) Offset() r3.Vector {
	return spatialmath.Offset(r.Femur.Point, r.Stylus.Point)
}

// CaptureReference stores the current femur and stylus poses as the reference for stylus
// reprojection. Both must have been reported.
func (s *Session) CaptureReference() (Reference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.femur == nil {
		return Reference{}, errors.Wrapf(ErrNoFemurData, "cannot capture reference (femur id %d)", s.cfg.FemurID)
	}
	if s.stylus == nil {
		return Reference{}, errors.Wrapf(ErrNoStylusData, "cannot capture reference (stylus id %d)", s.cfg.StylusID)
	}
	ref := Reference{Time: s.clock.Now(), Femur: *s.femur, Stylus: *s.stylus}
	s.reference = &ref
	s.logger.Infow("reference captured", "session", s.id.String(), "femur", ref.Femur.String(), "stylus", ref.Stylus.String())
	return ref, nil
}

// Reference returns the captured reference, if any.
func (s *Session) Reference() (Reference, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.reference == nil {
		return Reference{}, false
	}
	return *s.reference, true
}

// Update is the stylus position reconstructed from the current femur pose. When the stylus is
// also being reported, Actual and Deviation compare the two.
type Update struct {
	Femur      spatialmath.Pose
	Calculated r3.Vector
	Actual     *r3.Vector
	Deviation  *spatialmath.Deviation
}

// UpdatedStylus reprojects the reference stylus position through the femur's movement since
// the reference was captured.
func (s *Session) UpdatedStylus() (Update, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.reference == nil {
		return Update{}, ErrNoReference
	}
	if s.femur == nil {
		return Update{}, errors.Wrapf(ErrNoFemurData, "cannot update stylus (femur id %d)", s.cfg.FemurID)
	}
	ref := s.reference
	update := Update{
		Femur:      *s.femur,
		Calculated: spatialmath.ReprojectPose(ref.Femur, ref.Stylus.Point, *s.femur),
	}
	if s.stylus != nil {
		actual := s.stylus.Point
		deviation := spatialmath.NewDeviation(update.Calculated, actual)
		update.Actual = &actual
		update.Deviation = &deviation
	}
	return update, nil
}
