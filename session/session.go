// Package session holds the state of one tracking run: the latest femur and stylus poses from
// the feed, the reference capture, and the log of captured points.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kneelab/femurtrack/logging"
	"github.com/kneelab/femurtrack/posesource"
	"github.com/kneelab/femurtrack/spatialmath"
	"github.com/kneelab/femurtrack/utils"
)

var (
	// ErrNoFemurData is returned when an operation needs a femur tracker pose and none has arrived.
	ErrNoFemurData = errors.New("no femur tracker data available")
	// ErrNoStylusData is returned when an operation needs a stylus pose and none has arrived.
	ErrNoStylusData = errors.New("no stylus data available")
	// ErrNoReference is returned when the stylus is asked for before a reference was captured.
	ErrNoReference = errors.New("no reference captured")
	// ErrNoData is returned by Snapshot before any tracked rigid body has been reported.
	ErrNoData = errors.New("no rigid body data received")
)

// Config identifies the rigid bodies of a session.
type Config struct {
	FemurID  int
	StylusID int
}

// A Session tracks one femur tracker and one stylus. It is safe for a feed goroutine to Ingest
// while other goroutines query it.
type Session struct {
	mu     sync.RWMutex
	id     uuid.UUID
	cfg    Config
	clock  clock.Clock
	logger logging.Logger

	femur      *spatialmath.Pose
	stylus     *spatialmath.Pose
	reference  *Reference
	lastSample time.Time

	points *PointLog
}

// New makes a new session. A nil clock means the wall clock.
func New(cfg Config, clk clock.Clock, logger logging.Logger) *Session {
	if clk == nil {
		clk = clock.New()
	}
	return &Session{
		id:     uuid.New(),
		cfg:    cfg,
		clock:  clk,
		logger: logger,
		points: NewPointLog(),
	}
}

// ID returns the id of this session.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Config returns the rigid body ids of this session.
func (s *Session) Config() Config {
	return s.cfg
}

// Ingest records a feed sample. Samples for rigid bodies other than the femur tracker and the
// stylus are ignored, but still refresh the last sample time.
func (s *Session) Ingest(sample posesource.Sample) {
	pose := sample.Pose()
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSample = now
	switch sample.RigidBodyID {
	case s.cfg.FemurID:
		s.femur = &pose
	case s.cfg.StylusID:
		s.stylus = &pose
	}
}

// Active checks if a sample has arrived within timeout before at.
func (s *Session) Active(at time.Time, timeout time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastSample.IsZero() {
		return false
	}
	return s.lastSample.Add(timeout).After(at)
}

// Stale reports whether the feed has been silent for longer than timeout. A zero timeout
// disables the check.
func (s *Session) Stale(timeout time.Duration) bool {
	if timeout <= 0 {
		return false
	}
	return !s.Active(s.clock.Now(), timeout)
}

// LastSample returns when the most recent sample arrived, zero if none has.
func (s *Session) LastSample() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSample
}

// Snapshot is the latest known pose of each rigid body, in millimeters. A nil pose has not
// been reported yet.
type Snapshot struct {
	Time   time.Time
	Femur  *spatialmath.Pose
	Stylus *spatialmath.Pose
}

// Snapshot returns the latest poses. Either may be missing, but not both.
func (s *Session) Snapshot() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.femur == nil && s.stylus == nil {
		return Snapshot{}, ErrNoData
	}
	return Snapshot{Time: s.clock.Now(), Femur: copyPose(s.femur), Stylus: copyPose(s.stylus)}, nil
}

func (s *Session) currentFemur() (spatialmath.Pose, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.femur == nil {
		return spatialmath.Pose{}, errors.Wrapf(ErrNoFemurData, "femur id %d", s.cfg.FemurID)
	}
	return *s.femur, nil
}

// Run feeds source into the session on a background worker until ctx is done, the workers
// are stopped, or the source ends. The source's result is sent on the returned channel exactly
// once; a panic in the source is delivered there as an error.
func (s *Session) Run(ctx context.Context, source posesource.Source) (utils.StoppableWorkers, <-chan error) {
	result := make(chan error, 1)
	workers := utils.NewStoppableWorkersWithContext(ctx, func(workerCtx context.Context) {
		var err error
		// the result is sent on every path, a panicking source included
		defer func() {
			if r := recover(); r != nil {
				err = errors.Errorf("pose source panicked: %v", r)
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Warnw("pose source stopped", "session", s.id.String(), "error", err)
			}
			result <- err
		}()
		err = source.Run(workerCtx, s.Ingest)
	})
	return workers, result
}

func copyPose(p *spatialmath.Pose) *spatialmath.Pose {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
